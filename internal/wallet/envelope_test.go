package wallet

import (
	"errors"
	"strings"
	"testing"
)

func TestSealOpenRoundtrip(t *testing.T) {
	sealed, err := sealMnemonic("pass", "legal winner thank year wave sausage worth useful legal winner thank yellow")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if !strings.HasPrefix(string(sealed), sealFilePrefix) {
		t.Fatalf("sealed payload missing file prefix")
	}
	mnemonic, err := openMnemonic("pass", sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !strings.HasPrefix(mnemonic, "legal winner") {
		t.Fatalf("unexpected mnemonic: %q", mnemonic)
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := sealMnemonic("pass", "some words")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if _, err := openMnemonic("wrong", sealed); !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("expected ErrWrongPassphrase, got %v", err)
	}
}

func TestOpenRejectsForeignPayload(t *testing.T) {
	if _, err := openMnemonic("pass", []byte("not a wallet file")); !errors.Is(err, errSealInvalid) {
		t.Fatalf("expected errSealInvalid, got %v", err)
	}
}

func TestOpenTamperedCiphertext(t *testing.T) {
	sealed, err := sealMnemonic("pass", "some words")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	sealed[len(sealed)-10] ^= 0x01
	if _, err := openMnemonic("pass", sealed); err == nil {
		t.Fatalf("tampered payload opened cleanly")
	}
}
