// Package wallet is the local wallet/session provider. It holds bip39
// seed material sealed on disk, derives marketplace accounts from it and
// notifies subscribers whenever the active identity set changes,
// including when it changes to empty.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/tyler-smith/go-bip39"
)

var (
	ErrNoProvider     = errors.New("no wallet is configured")
	ErrIdentityDenied = errors.New("wallet is locked")

	ErrInvalidMnemonic   = errors.New("invalid mnemonic")
	ErrPassphraseNeeded  = errors.New("passphrase is required")
	ErrWalletExists      = errors.New("wallet already exists")
	ErrUnknownAccount    = errors.New("unknown account")
	ErrNothingToUnlock   = errors.New("no sealed wallet found")
	ErrWrongPassphrase   = errors.New("wrong passphrase")
	errAccountDerivation = errors.New("account derivation failed")
)

// Provider is the identity surface consumed by the session tracker.
// RequestIdentities fails when no wallet exists or it is locked;
// IdentityChanges fires on every change to the identity set.
type Provider interface {
	RequestIdentities(ctx context.Context) ([]string, error)
	IdentityChanges() (<-chan []string, func())
}

const (
	seedFileName = "seed.enc"
	accountSlots = 3
)

type account struct {
	address common.Address
	key     *derivedKey
}

// Wallet is a seed-backed account holder. Exactly one account is active
// at a time; switching accounts publishes an identity-change
// notification with the new active account first.
type Wallet struct {
	mu          sync.Mutex
	dir         string
	accounts    []account
	active      int
	fingerprint string
	subs        map[int]chan []string
	nextSub     int
}

// Open prepares a wallet rooted at dir without unlocking it.
func Open(dir string) *Wallet {
	return &Wallet{
		dir:    dir,
		active: -1,
		subs:   make(map[int]chan []string),
	}
}

func (w *Wallet) seedPath() string {
	return filepath.Join(w.dir, seedFileName)
}

// Exists reports whether sealed seed material is present on disk.
func (w *Wallet) Exists() bool {
	_, err := os.Stat(w.seedPath())
	return err == nil
}

// Create generates a fresh mnemonic, seals it under passphrase and
// unlocks the wallet. The mnemonic is returned exactly once.
func (w *Wallet) Create(passphrase string) (string, error) {
	if strings.TrimSpace(passphrase) == "" {
		return "", ErrPassphraseNeeded
	}
	if w.Exists() {
		return "", ErrWalletExists
	}
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", err
	}
	if err := w.Import(mnemonic, passphrase); err != nil {
		return "", err
	}
	return mnemonic, nil
}

// Import seals mnemonic under passphrase and unlocks the wallet with the
// accounts derived from it.
func (w *Wallet) Import(mnemonic, passphrase string) error {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" || !bip39.IsMnemonicValid(mnemonic) {
		return ErrInvalidMnemonic
	}
	if strings.TrimSpace(passphrase) == "" {
		return ErrPassphraseNeeded
	}
	sealed, err := sealMnemonic(passphrase, mnemonic)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(w.seedPath(), sealed, 0o600); err != nil {
		return err
	}
	return w.adopt(mnemonic)
}

// Unlock opens the sealed seed and derives the account set. The first
// derived account becomes active.
func (w *Wallet) Unlock(passphrase string) error {
	raw, err := os.ReadFile(w.seedPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNothingToUnlock
		}
		return err
	}
	mnemonic, err := openMnemonic(passphrase, raw)
	if err != nil {
		return err
	}
	return w.adopt(mnemonic)
}

func (w *Wallet) adopt(mnemonic string) error {
	seed := bip39.NewSeed(mnemonic, "")
	accounts := make([]account, 0, accountSlots)
	for i := 0; i < accountSlots; i++ {
		key, err := deriveAccountKey(seed, i)
		if err != nil {
			return fmt.Errorf("%w: %v", errAccountDerivation, err)
		}
		accounts = append(accounts, account{address: key.address, key: key})
	}
	fingerprint, err := seedFingerprint(seed)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.accounts = accounts
	w.active = 0
	w.fingerprint = fingerprint
	identities := w.identitiesLocked()
	w.mu.Unlock()

	w.publish(identities)
	return nil
}

// Lock drops the derived keys and publishes an empty identity set.
func (w *Wallet) Lock() {
	w.mu.Lock()
	w.accounts = nil
	w.active = -1
	w.fingerprint = ""
	w.mu.Unlock()

	w.publish([]string{})
}

// SwitchAccount makes address the active identity and notifies
// subscribers with the reordered identity set.
func (w *Wallet) SwitchAccount(address string) error {
	w.mu.Lock()
	if w.active < 0 {
		w.mu.Unlock()
		return ErrIdentityDenied
	}
	idx := -1
	for i, acct := range w.accounts {
		if strings.EqualFold(acct.address.Hex(), address) {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return ErrUnknownAccount
	}
	changed := idx != w.active
	w.active = idx
	identities := w.identitiesLocked()
	w.mu.Unlock()

	if changed {
		w.publish(identities)
	}
	return nil
}

// Accounts lists all derived addresses, active first.
func (w *Wallet) Accounts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.identitiesLocked()
}

// Fingerprint is a short base58 tag identifying the seed, safe for logs
// and UI labels.
func (w *Wallet) Fingerprint() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fingerprint
}

// RequestIdentities implements Provider. It never blocks: the wallet is
// either present and unlocked, or the request fails terminally.
func (w *Wallet) RequestIdentities(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !w.Exists() {
		return nil, ErrNoProvider
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active < 0 {
		return nil, ErrIdentityDenied
	}
	return w.identitiesLocked(), nil
}

// IdentityChanges implements Provider. The returned cancel releases the
// subscription; a slow subscriber is dropped rather than blocking the
// wallet.
func (w *Wallet) IdentityChanges() (<-chan []string, func()) {
	w.mu.Lock()
	id := w.nextSub
	w.nextSub++
	ch := make(chan []string, 8)
	w.subs[id] = ch
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if sub, ok := w.subs[id]; ok {
			close(sub)
			delete(w.subs, id)
		}
	}
	return ch, cancel
}

// TransactorFor implements the gateway signer port for any account this
// wallet holds.
func (w *Wallet) TransactorFor(identity string, chainID *big.Int) (*bind.TransactOpts, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active < 0 {
		return nil, ErrIdentityDenied
	}
	for _, acct := range w.accounts {
		if strings.EqualFold(acct.address.Hex(), identity) {
			return bind.NewKeyedTransactorWithChainID(acct.key.priv, chainID)
		}
	}
	return nil, ErrUnknownAccount
}

func (w *Wallet) identitiesLocked() []string {
	if w.active < 0 {
		return []string{}
	}
	out := make([]string, 0, len(w.accounts))
	out = append(out, w.accounts[w.active].address.Hex())
	for i, acct := range w.accounts {
		if i == w.active {
			continue
		}
		out = append(out, acct.address.Hex())
	}
	return out
}

func (w *Wallet) publish(identities []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, ch := range w.subs {
		select {
		case ch <- identities:
		default:
			close(ch)
			delete(w.subs, id)
		}
	}
}
