package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardiansetya/go-shop-admin/internal/catalog"
)

// LineItemRequest is what the caller asks for; name and price are resolved
// from the catalog at placement time.
type LineItemRequest struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// Placement realizes "place order" as one logical operation: snapshot product
// prices, reserve stock for every line item, persist the order. An order
// exists in the store if and only if its reservations were committed; every
// failure path after a successful reservation compensates before returning.
type Placement struct {
	Catalog catalog.Ledger
	Coord   *Coordinator
	Store   Store
}

func (p *Placement) PlaceOrder(ctx context.Context, code, customerName, customerEmail string, items []LineItemRequest, paid bool) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	for _, it := range items {
		if it.Qty <= 0 {
			return Order{}, fmt.Errorf("product %s: %w", it.ProductID, catalog.ErrInvalidQty)
		}
	}

	// Resolve the product snapshot per item; the captured price, not the
	// product's future price, is what the order keeps.
	lines := make([]LineItem, 0, len(items))
	demands := make([]Demand, 0, len(items))
	total := 0
	for _, it := range items {
		prod, err := p.Catalog.Get(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				err = fmt.Errorf("product %s: %w", it.ProductID, err)
			}
			return Order{}, err
		}
		lines = append(lines, LineItem{
			ProductID:   prod.ID,
			ProductName: prod.Name,
			Qty:         it.Qty,
			PriceCents:  prod.PriceCents,
		})
		total += prod.PriceCents * it.Qty
		demands = append(demands, Demand{ProductID: prod.ID, Qty: it.Qty})
	}

	reserved, err := p.Coord.ReserveAll(ctx, demands)
	if err != nil {
		return Order{}, err
	}

	status := StatusPending
	if paid {
		status = StatusPaid
	}
	created, err := p.Store.Create(ctx, Order{
		Code:          code,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Items:         lines,
		TotalCents:    total,
		Status:        status,
	})
	if err != nil {
		// the stock is debited but the order did not land: undo the debit
		if relErr := p.Coord.Release(ctx, reserved); relErr != nil {
			err = errors.Join(err, relErr)
		}
		return Order{}, err
	}
	return created, nil
}
