package market

import (
	"context"
	"sync"

	"github.com/vismaygawai/marketplace/pkg/models"
)

// Catalog is the reconciled in-memory view of the marketplace: all
// listed items in ledger enumeration order, and the subset owned by the
// active identity. Rebuilds replace a sequence wholesale or not at all;
// a failed rebuild leaves the prior view untouched, so readers only
// ever see a consistent (possibly stale) snapshot.
type Catalog struct {
	mu     sync.RWMutex
	reader CatalogReader
	items  []models.Item
	owned  []models.Item
}

func NewCatalog(reader CatalogReader) *Catalog {
	return &Catalog{reader: reader}
}

// Items returns the current all-items view.
func (c *Catalog) Items() []models.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Item(nil), c.items...)
}

// Owned returns the current owned-items view.
func (c *Catalog) Owned() []models.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Item(nil), c.owned...)
}

// Clear empties both views without touching the ledger.
func (c *Catalog) Clear() {
	c.mu.Lock()
	c.items = nil
	c.owned = nil
	c.mu.Unlock()
}

// RebuildAll reads every item 1..itemCount in ascending id order and
// replaces the all-items view. Any single read failure aborts the whole
// rebuild and discards the partial result.
func (c *Catalog) RebuildAll(ctx context.Context) error {
	count, err := c.reader.ItemCount(ctx)
	if err != nil {
		return &LoadError{View: "items", Err: err}
	}
	next := make([]models.Item, 0, count)
	for id := uint64(1); id <= count; id++ {
		item, err := c.reader.Item(ctx, id)
		if err != nil {
			return &LoadError{View: "items", Err: err}
		}
		next = append(next, item)
	}

	c.mu.Lock()
	c.items = next
	c.mu.Unlock()
	return nil
}

// RebuildOwned reads the ids owned by identity and then each referenced
// item, in the order the ledger returned them, replacing the owned
// view. Same all-or-nothing policy as RebuildAll.
func (c *Catalog) RebuildOwned(ctx context.Context, identity string) error {
	ids, err := c.reader.OwnedIDs(ctx, identity)
	if err != nil {
		return &LoadError{View: "owned", Err: err}
	}
	next := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		item, err := c.reader.Item(ctx, id)
		if err != nil {
			return &LoadError{View: "owned", Err: err}
		}
		next = append(next, item)
	}

	c.mu.Lock()
	c.owned = next
	c.mu.Unlock()
	return nil
}
