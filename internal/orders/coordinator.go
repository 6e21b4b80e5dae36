package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardiansetya/go-shop-admin/internal/catalog"
)

// Demand is one (product, quantity) pair to reserve.
type Demand struct {
	ProductID string
	Qty       int
}

// Reservation records one committed conditional decrement.
type Reservation struct {
	ProductID string
	Qty       int
	Remaining int // stock level right after the decrement
}

// Coordinator turns a list of demands into an all-or-nothing reservation.
//
// Items are reserved one at a time with the ledger's atomic conditional
// decrement; a pre-check pass over all items would race with concurrent
// placements and oversell the last units. On the first failure every item
// reserved so far is released, in reverse order, before returning. The caller
// never observes a partial reservation.
type Coordinator struct {
	Ledger catalog.Ledger
}

func (c *Coordinator) ReserveAll(ctx context.Context, demands []Demand) ([]Reservation, error) {
	reserved := make([]Reservation, 0, len(demands))
	for _, d := range demands {
		remaining, err := c.Ledger.TryReserve(ctx, d.ProductID, d.Qty)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				err = fmt.Errorf("product %s: %w", d.ProductID, err)
			}
			if relErr := c.Release(ctx, reserved); relErr != nil {
				// compensation failed: surface both, never swallow either
				err = errors.Join(err, relErr)
			}
			return nil, err
		}
		reserved = append(reserved, Reservation{ProductID: d.ProductID, Qty: d.Qty, Remaining: remaining})
	}
	return reserved, nil
}

// Release compensates committed reservations, most recent first. Call at most
// once per reservation.
func (c *Coordinator) Release(ctx context.Context, reserved []Reservation) error {
	var errs []error
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := c.Ledger.Release(ctx, r.ProductID, r.Qty); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", r.ProductID, err))
		}
	}
	return errors.Join(errs...)
}
