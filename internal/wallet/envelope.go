package wallet

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	sealVersion    = 1
	sealSaltSize   = 16
	sealFilePrefix = "MKTWALLET1\n"

	sealArgonTime    = uint32(2)
	sealArgonMemKB   = uint32(64 * 1024)
	sealArgonThreads = uint8(1)
)

var errSealInvalid = errors.New("sealed wallet payload is invalid")

type sealedSeed struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

func sealMnemonic(passphrase, mnemonic string) ([]byte, error) {
	salt := make([]byte, sealSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := sealKey(passphrase, salt)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	env := sealedSeed{
		Version:     sealVersion,
		KDF:         "argon2id",
		KDFTime:     sealArgonTime,
		KDFMemoryKB: sealArgonMemKB,
		KDFThreads:  sealArgonThreads,
		Salt:        salt,
		Nonce:       nonce,
		Ciphertext:  aead.Seal(nil, nonce, []byte(mnemonic), nil),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(sealFilePrefix), raw...), nil
}

func openMnemonic(passphrase string, data []byte) (string, error) {
	if !strings.HasPrefix(string(data), sealFilePrefix) {
		return "", errSealInvalid
	}
	var env sealedSeed
	if err := json.Unmarshal(data[len(sealFilePrefix):], &env); err != nil {
		return "", errSealInvalid
	}
	if env.Version != sealVersion || env.KDF != "argon2id" {
		return "", errSealInvalid
	}
	key := argon2.IDKey([]byte(passphrase), env.Salt, env.KDFTime, env.KDFMemoryKB, env.KDFThreads, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return "", ErrWrongPassphrase
	}
	return string(plaintext), nil
}

func sealKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, sealArgonTime, sealArgonMemKB, sealArgonThreads, chacha20poly1305.KeySize)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
