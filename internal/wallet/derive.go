package wallet

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/hkdf"
)

const (
	hkdfInfoAccount     = "marketplace/wallet/account/v1"
	hkdfInfoFingerprint = "marketplace/wallet/fingerprint/v1"
)

type derivedKey struct {
	priv    *ecdsa.PrivateKey
	address common.Address
}

// deriveAccountKey maps (seed, index) to a secp256k1 key. HKDF output is
// not always a valid scalar, so the counter is folded into the info
// string until one is.
func deriveAccountKey(seed []byte, index int) (*derivedKey, error) {
	for counter := 0; counter < 16; counter++ {
		material, err := hkdfExpand(seed, fmt.Sprintf("%s/%d/%d", hkdfInfoAccount, index, counter), 32)
		if err != nil {
			return nil, err
		}
		priv, err := crypto.ToECDSA(material)
		if err != nil {
			continue
		}
		return &derivedKey{
			priv:    priv,
			address: crypto.PubkeyToAddress(priv.PublicKey),
		}, nil
	}
	return nil, errors.New("no valid scalar after 16 attempts")
}

func seedFingerprint(seed []byte) (string, error) {
	material, err := hkdfExpand(seed, hkdfInfoFingerprint, 8)
	if err != nil {
		return "", err
	}
	return "mkt" + base58.Encode(material), nil
}

func hkdfExpand(seed []byte, info string, outLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, seed, nil, []byte(info))
	out := make([]byte, outLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
