package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/ardiansetya/go-shop-admin/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type placementFixture struct {
	catalog *catalog.Memory
	store   *MemStore
	placer  *Placement
}

func newPlacementFixture() *placementFixture {
	cat := catalog.NewMemory()
	store := NewMemStore()
	coord := &Coordinator{Ledger: cat}
	return &placementFixture{
		catalog: cat,
		store:   store,
		placer:  &Placement{Catalog: cat, Coord: coord, Store: store},
	}
}

func (f *placementFixture) product(t *testing.T, name string, priceCents, stock int) catalog.Product {
	t.Helper()
	p, err := f.catalog.Create(context.Background(), name, "", priceCents, stock)
	require.NoError(t, err)
	return p
}

func TestPlaceOrder_RoundTrip(t *testing.T) {
	f := newPlacementFixture()
	mug := f.product(t, "mug", 500, 10)
	shirt := f.product(t, "shirt", 1500, 4)

	o, err := f.placer.PlaceOrder(context.Background(), "ORD-1", "Dina", "dina@example.com",
		[]LineItemRequest{{ProductID: mug.ID, Qty: 2}, {ProductID: shirt.ID, Qty: 1}}, true)

	require.NoError(t, err)
	assert.Equal(t, StatusPaid, o.Status)
	assert.Equal(t, 2*500+1500, o.TotalCents)

	got, err := f.store.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, mug.ID, got.Items[0].ProductID)
	assert.Equal(t, "mug", got.Items[0].ProductName)
	assert.Equal(t, 2, got.Items[0].Qty)
	assert.Equal(t, 500, got.Items[0].PriceCents)

	// stock was durably decremented
	p, err := f.catalog.Get(context.Background(), mug.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)
}

func TestPlaceOrder_UnpaidStartsPending(t *testing.T) {
	f := newPlacementFixture()
	mug := f.product(t, "mug", 500, 3)

	o, err := f.placer.PlaceOrder(context.Background(), "ORD-2", "Dina", "dina@example.com",
		[]LineItemRequest{{ProductID: mug.ID, Qty: 1}}, false)

	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
}

func TestPlaceOrder_PriceSnapshotImmuneToLaterEdits(t *testing.T) {
	f := newPlacementFixture()
	mug := f.product(t, "mug", 500, 10)

	o, err := f.placer.PlaceOrder(context.Background(), "ORD-3", "Dina", "dina@example.com",
		[]LineItemRequest{{ProductID: mug.ID, Qty: 2}}, true)
	require.NoError(t, err)

	// raise price and rename after placement
	_, err = f.catalog.Update(context.Background(), mug.ID, "fancy mug", "", 900, 8)
	require.NoError(t, err)

	got, err := f.store.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, got.Items[0].PriceCents)
	assert.Equal(t, "mug", got.Items[0].ProductName)
	assert.Equal(t, 1000, got.TotalCents)
}

func TestPlaceOrder_EmptyItemsRejected(t *testing.T) {
	f := newPlacementFixture()

	_, err := f.placer.PlaceOrder(context.Background(), "ORD-4", "Dina", "dina@example.com", nil, true)

	assert.True(t, errors.Is(err, ErrEmptyOrder))

	out, listErr := f.store.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, out)
}

func TestPlaceOrder_NonPositiveQtyRejected(t *testing.T) {
	f := newPlacementFixture()
	mug := f.product(t, "mug", 500, 10)

	_, err := f.placer.PlaceOrder(context.Background(), "ORD-5", "Dina", "dina@example.com",
		[]LineItemRequest{{ProductID: mug.ID, Qty: 0}}, true)

	assert.True(t, errors.Is(err, catalog.ErrInvalidQty))

	// rejected before any mutation
	p, err := f.catalog.Get(context.Background(), mug.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	f := newPlacementFixture()
	p1 := f.product(t, "p1", 10000, 5)
	p2 := f.product(t, "p2", 5000, 0)

	_, err := f.placer.PlaceOrder(context.Background(), "ORD-6", "Dina", "dina@example.com",
		[]LineItemRequest{{ProductID: p1.ID, Qty: 2}, {ProductID: p2.ID, Qty: 1}}, true)

	var insuf *catalog.InsufficientStockError
	require.ErrorAs(t, err, &insuf)
	assert.Equal(t, p2.ID, insuf.ProductID)

	// p1's reservation was rolled back, no order was created
	got, err := f.catalog.Get(context.Background(), p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	out, listErr := f.store.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, out)
}

// failingStore rejects every create, simulating a store outage after the
// reservations have committed.
type failingStore struct {
	*MemStore
	createErr error
}

func (s *failingStore) Create(ctx context.Context, o Order) (Order, error) {
	return Order{}, s.createErr
}

func TestPlaceOrder_StoreFailureReleasesStock(t *testing.T) {
	cat := catalog.NewMemory()
	mug, err := cat.Create(context.Background(), "mug", "", 500, 5)
	require.NoError(t, err)

	storeErr := errors.New("store unavailable")
	placer := &Placement{
		Catalog: cat,
		Coord:   &Coordinator{Ledger: cat},
		Store:   &failingStore{MemStore: NewMemStore(), createErr: storeErr},
	}

	_, err = placer.PlaceOrder(context.Background(), "ORD-7", "Dina", "dina@example.com",
		[]LineItemRequest{{ProductID: mug.ID, Qty: 3}}, true)

	require.Error(t, err)
	assert.True(t, errors.Is(err, storeErr))

	// no debited-but-order-less state survives
	p, err := cat.Get(context.Background(), mug.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

// Product with stock 5, two concurrent placements of 3 units each: exactly one
// succeeds and stock ends at 2.
func TestPlaceOrder_ConcurrentLastUnits(t *testing.T) {
	f := newPlacementFixture()
	p1 := f.product(t, "p1", 1000, 5)

	results := make(chan error, 2)
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, err := f.placer.PlaceOrder(context.Background(), "ORD-C", "Dina", "dina@example.com",
				[]LineItemRequest{{ProductID: p1.ID, Qty: 3}}, true)
			results <- err
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var insuf *catalog.InsufficientStockError
		require.ErrorAs(t, err, &insuf)
		assert.Equal(t, p1.ID, insuf.ProductID)
		losses++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	got, err := f.catalog.Get(context.Background(), p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)

	out, err := f.store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
