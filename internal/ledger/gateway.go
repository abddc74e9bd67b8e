// Package ledger is the typed call surface over the marketplace contract.
// It holds no state beyond the dialed connection and performs no retries;
// every failure is reported to the caller exactly once.
package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// Signer resolves a transactor for an identity held by the wallet.
type Signer interface {
	TransactorFor(identity string, chainID *big.Int) (*bind.TransactOpts, error)
}

// Handle is a submitted transaction awaiting finalization. Wait blocks
// until the ledger mines the transaction or the wait itself fails.
type Handle interface {
	Wait(ctx context.Context) error
}

// ReadError reports a failed view call. Catalog rebuilds treat any
// ReadError as fatal for the whole rebuild.
type ReadError struct {
	Op  string
	ID  uint64
	Err error
}

func (e *ReadError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("ledger read %s(%d) failed: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("ledger read %s failed: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// CallError reports a mutating call rejected before submission, most
// commonly a signer problem or insufficient funds.
type CallError struct {
	Op  string
	Err error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("ledger call %s rejected: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// ConfirmError reports a submitted transaction that failed to confirm:
// either the wait errored or the receipt came back reverted. The
// transaction may still have finalized on the ledger if only the wait
// failed; the client view stays stale until the next rebuild.
type ConfirmError struct {
	Tx  string
	Err error
}

func (e *ConfirmError) Error() string {
	return fmt.Sprintf("transaction %s failed to confirm: %v", e.Tx, e.Err)
}

func (e *ConfirmError) Unwrap() error { return e.Err }
