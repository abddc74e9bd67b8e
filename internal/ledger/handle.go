package ledger

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

var errTransactionReverted = errors.New("transaction reverted")

// txHandle waits on exactly one submitted transaction. There is no
// cancellation beyond the context and no retry: once submitted, the
// transaction runs to success or failure on the ledger.
type txHandle struct {
	client bind.DeployBackend
	tx     *types.Transaction
}

func (h *txHandle) Wait(ctx context.Context) error {
	receipt, err := bind.WaitMined(ctx, h.client, h.tx)
	observeCall("waitMined", err)
	if err != nil {
		return &ConfirmError{Tx: h.tx.Hash().Hex(), Err: err}
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return &ConfirmError{Tx: h.tx.Hash().Hex(), Err: errTransactionReverted}
	}
	return nil
}
