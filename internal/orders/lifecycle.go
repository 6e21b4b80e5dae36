package orders

import (
	"context"
	"fmt"
	"log"
)

// Lifecycle owns the order status state machine and the assignment coupling.
// It is the only writer that should mutate order status.
type Lifecycle struct {
	Store Store
}

// Transition moves an order along the state machine (pending -> paid ->
// shipped) and fails with ErrInvalidTransition otherwise. The guarded store
// update keeps a concurrent status change from being silently overwritten.
func (l *Lifecycle) Transition(ctx context.Context, id string, to Status) (Order, error) {
	if !KnownStatus(to) {
		return Order{}, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	o, err := l.Store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.Status, to) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	updated, swapped, err := l.Store.CasStatus(ctx, id, o.Status, to)
	if err != nil {
		return Order{}, err
	}
	if !swapped {
		return Order{}, fmt.Errorf("%w: %s -> %s (status changed concurrently)", ErrInvalidTransition, o.Status, to)
	}
	return updated, nil
}

// Override sets the status directly, skipping the state machine. It is the
// administrative escape hatch and stays off the regular update path; only the
// status value itself is validated.
func (l *Lifecycle) Override(ctx context.Context, id string, to Status) (Order, error) {
	if !KnownStatus(to) {
		return Order{}, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	o, err := l.Store.SetStatus(ctx, id, to)
	if err != nil {
		return Order{}, err
	}
	log.Printf("order %s status overridden to %s", id, to)
	return o, nil
}

// Assign sets or clears (empty agent) the delivery agent. Assigning a
// non-empty agent to a paid order also moves it to shipped: dispatching for
// delivery and shipment are coupled. Any other status is left untouched.
func (l *Lifecycle) Assign(ctx context.Context, id, agent string) (Order, error) {
	return l.Store.SetAssignment(ctx, id, agent, true)
}
