package market

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/vismaygawai/marketplace/pkg/models"
)

// fakeReader serves items 1..count from a fixed table and can be told
// to fail on a specific item id.
type fakeReader struct {
	items    map[uint64]models.Item
	ownedIDs []uint64

	failCount bool
	failItem  uint64
	failOwned bool
}

var errReaderDown = errors.New("ledger unreachable")

func (f *fakeReader) ItemCount(ctx context.Context) (uint64, error) {
	if f.failCount {
		return 0, errReaderDown
	}
	return uint64(len(f.items)), nil
}

func (f *fakeReader) Item(ctx context.Context, id uint64) (models.Item, error) {
	if f.failItem != 0 && id == f.failItem {
		return models.Item{}, errReaderDown
	}
	item, ok := f.items[id]
	if !ok {
		return models.Item{}, errReaderDown
	}
	return item, nil
}

func (f *fakeReader) OwnedIDs(ctx context.Context, owner string) ([]uint64, error) {
	if f.failOwned {
		return nil, errReaderDown
	}
	return append([]uint64(nil), f.ownedIDs...), nil
}

func newFakeReader(count int) *fakeReader {
	items := make(map[uint64]models.Item, count)
	for i := 1; i <= count; i++ {
		id := uint64(i)
		items[id] = models.Item{
			ID:     id,
			Name:   "item",
			Price:  big.NewInt(int64(i) * 1000),
			Seller: "0x1111111111111111111111111111111111111111",
			Owner:  "0x1111111111111111111111111111111111111111",
		}
	}
	return &fakeReader{items: items}
}

func TestRebuildAllAscendingOrder(t *testing.T) {
	reader := newFakeReader(5)
	catalog := NewCatalog(reader)
	if err := catalog.RebuildAll(context.Background()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	items := catalog.Items()
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	for i, item := range items {
		if item.ID != uint64(i+1) {
			t.Fatalf("item %d has id %d, want %d", i, item.ID, i+1)
		}
	}
}

func TestRebuildAllIdempotent(t *testing.T) {
	reader := newFakeReader(3)
	catalog := NewCatalog(reader)
	if err := catalog.RebuildAll(context.Background()); err != nil {
		t.Fatalf("first rebuild failed: %v", err)
	}
	if err := catalog.RebuildAll(context.Background()); err != nil {
		t.Fatalf("second rebuild failed: %v", err)
	}
	if got := len(catalog.Items()); got != 3 {
		t.Fatalf("expected 3 items after repeated rebuild, got %d", got)
	}
}

func TestRebuildAllFailureKeepsPriorView(t *testing.T) {
	reader := newFakeReader(5)
	catalog := NewCatalog(reader)
	if err := catalog.RebuildAll(context.Background()); err != nil {
		t.Fatalf("initial rebuild failed: %v", err)
	}

	reader.failItem = 3
	err := catalog.RebuildAll(context.Background())
	if err == nil {
		t.Fatalf("expected rebuild failure")
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || loadErr.View != "items" {
		t.Fatalf("expected items LoadError, got %v", err)
	}
	if !errors.Is(err, errReaderDown) {
		t.Fatalf("LoadError does not wrap cause: %v", err)
	}
	if got := len(catalog.Items()); got != 5 {
		t.Fatalf("prior view lost after failed rebuild: %d items", got)
	}
}

func TestRebuildOwnedLedgerOrder(t *testing.T) {
	reader := newFakeReader(5)
	reader.ownedIDs = []uint64{4, 2}
	catalog := NewCatalog(reader)
	if err := catalog.RebuildOwned(context.Background(), "0xabc"); err != nil {
		t.Fatalf("owned rebuild failed: %v", err)
	}
	owned := catalog.Owned()
	if len(owned) != 2 || owned[0].ID != 4 || owned[1].ID != 2 {
		t.Fatalf("owned view order wrong: %+v", owned)
	}
}

func TestRebuildOwnedFailureKeepsPriorView(t *testing.T) {
	reader := newFakeReader(3)
	reader.ownedIDs = []uint64{1}
	catalog := NewCatalog(reader)
	if err := catalog.RebuildOwned(context.Background(), "0xabc"); err != nil {
		t.Fatalf("initial owned rebuild failed: %v", err)
	}

	reader.failOwned = true
	err := catalog.RebuildOwned(context.Background(), "0xabc")
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || loadErr.View != "owned" {
		t.Fatalf("expected owned LoadError, got %v", err)
	}
	if got := len(catalog.Owned()); got != 1 {
		t.Fatalf("prior owned view lost: %d items", got)
	}
}

func TestClearEmptiesBothViews(t *testing.T) {
	reader := newFakeReader(2)
	reader.ownedIDs = []uint64{1}
	catalog := NewCatalog(reader)
	if err := catalog.RebuildAll(context.Background()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if err := catalog.RebuildOwned(context.Background(), "0xabc"); err != nil {
		t.Fatalf("owned rebuild failed: %v", err)
	}

	catalog.Clear()
	if len(catalog.Items()) != 0 || len(catalog.Owned()) != 0 {
		t.Fatalf("clear left items behind")
	}
}

func TestViewsReturnCopies(t *testing.T) {
	reader := newFakeReader(2)
	catalog := NewCatalog(reader)
	if err := catalog.RebuildAll(context.Background()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	view := catalog.Items()
	view[0].Name = "mutated"
	if catalog.Items()[0].Name == "mutated" {
		t.Fatalf("Items returned the internal slice")
	}
}
