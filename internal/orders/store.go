package orders

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no line items")
	ErrTotalMismatch     = errors.New("order total does not match line item subtotals")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("illegal order status transition")
)

// Store persists orders. Orders are created once and never deleted; the only
// mutations are the status and assignment primitives below.
type Store interface {
	// Create assigns the order id and ordered-at timestamp. Fails with
	// ErrEmptyOrder or ErrTotalMismatch before persisting anything.
	Create(ctx context.Context, o Order) (Order, error)

	Get(ctx context.Context, id string) (Order, error)

	// List returns all orders, newest first.
	List(ctx context.Context) ([]Order, error)

	// SetStatus overwrites the status unconditionally. The state machine lives
	// in Lifecycle; this is the raw primitive behind the administrative
	// override.
	SetStatus(ctx context.Context, id string, s Status) (Order, error)

	// CasStatus sets the status to `to` only if it currently equals `from`.
	// swapped is false when the order exists but the status had moved.
	CasStatus(ctx context.Context, id string, from, to Status) (o Order, swapped bool, err error)

	// SetAssignment sets or clears (empty agent) the delivery agent. With
	// shipIfPaid, a non-empty agent on a paid order also moves the status to
	// shipped in the same atomic update.
	SetAssignment(ctx context.Context, id, agent string, shipIfPaid bool) (Order, error)
}

func validateCreate(o Order) error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	sum := 0
	for _, li := range o.Items {
		sum += li.SubtotalCents()
	}
	if sum != o.TotalCents {
		return ErrTotalMismatch
	}
	return nil
}
