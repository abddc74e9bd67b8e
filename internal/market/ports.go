package market

import (
	"context"
	"math/big"

	"github.com/vismaygawai/marketplace/internal/ledger"
	"github.com/vismaygawai/marketplace/pkg/models"
)

// Gateway is the full contract surface the service drives. Implemented
// by ledger.Contract.
type Gateway interface {
	ItemCount(ctx context.Context) (uint64, error)
	Item(ctx context.Context, id uint64) (models.Item, error)
	OwnedIDs(ctx context.Context, owner string) ([]uint64, error)
	ListItem(ctx context.Context, from, name string, price *big.Int) (ledger.Handle, error)
	PurchaseItem(ctx context.Context, from string, id uint64, price *big.Int) (ledger.Handle, error)
	TransferItem(ctx context.Context, from string, id uint64, to string) (ledger.Handle, error)
}

// CatalogReader is the read-only slice of the gateway the catalog store
// rebuilds from.
type CatalogReader interface {
	ItemCount(ctx context.Context) (uint64, error)
	Item(ctx context.Context, id uint64) (models.Item, error)
	OwnedIDs(ctx context.Context, owner string) ([]uint64, error)
}
