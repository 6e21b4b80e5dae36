package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var (
	ErrNotFound   = errors.New("product not found")
	ErrInvalidQty = errors.New("quantity must be positive")
)

// InsufficientStockError reports a reservation that the current stock level
// could not satisfy.
type InsufficientStockError struct {
	ProductID string
	Required  int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: need %d, have %d", e.ProductID, e.Required, e.Available)
}

func (e *InsufficientStockError) Shortfall() int { return e.Required - e.Available }

// Ledger owns product stock. TryReserve and Release are the only stock
// mutations the ordering path performs.
type Ledger interface {
	// TryReserve decrements stock by qty only if current stock >= qty.
	// The check and the decrement are one atomic step per product: concurrent
	// reservations on the same product each observe the committed effect of
	// the previous ones, so stock never goes negative. Returns the remaining
	// stock on success, ErrNotFound, or *InsufficientStockError.
	TryReserve(ctx context.Context, productID string, qty int) (remaining int, err error)

	// Release returns qty units to stock, undoing one successful reservation.
	// Callers must release at most once per reservation.
	Release(ctx context.Context, productID string, qty int) error

	Get(ctx context.Context, productID string) (Product, error)
}

// Catalog is the full management surface: the ledger plus the CRUD and
// restocking operations used by catalog administration, not by the ordering
// path.
type Catalog interface {
	Ledger

	Create(ctx context.Context, name, imageURL string, priceCents, stock int) (Product, error)
	Update(ctx context.Context, id string, name, imageURL string, priceCents, stock int) (Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Product, error)

	// Adjust applies an unconditional stock delta, floored at zero.
	Adjust(ctx context.Context, productID string, delta int) (newStock int, err error)
}
