package orders

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is a mutex-guarded in-memory Store for tests and local development.
type MemStore struct {
	mu     sync.RWMutex
	orders map[string]*Order
	ids    []string // insertion order
}

func NewMemStore() *MemStore {
	return &MemStore{orders: make(map[string]*Order)}
}

func (s *MemStore) Create(_ context.Context, o Order) (Order, error) {
	if err := validateCreate(o); err != nil {
		return Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	o.ID = uuid.NewString()
	o.OrderedAt = now
	o.UpdatedAt = now
	o.Items = append([]LineItem(nil), o.Items...)
	s.orders[o.ID] = &o
	s.ids = append(s.ids, o.ID)
	return cloneOrder(&o), nil
}

func (s *MemStore) Get(_ context.Context, id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *MemStore) List(_ context.Context) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0, len(s.ids))
	for i := len(s.ids) - 1; i >= 0; i-- {
		out = append(out, cloneOrder(s.orders[s.ids[i]]))
	}
	return out, nil
}

func (s *MemStore) SetStatus(_ context.Context, id string, st Status) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	o.Status = st
	o.UpdatedAt = time.Now().UTC()
	return cloneOrder(o), nil
}

func (s *MemStore) CasStatus(_ context.Context, id string, from, to Status) (Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, false, ErrNotFound
	}
	if o.Status != from {
		return cloneOrder(o), false, nil
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return cloneOrder(o), true, nil
}

func (s *MemStore) SetAssignment(_ context.Context, id, agent string, shipIfPaid bool) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	o.AssignedTo = agent
	if shipIfPaid && agent != "" && o.Status == StatusPaid {
		o.Status = StatusShipped
	}
	o.UpdatedAt = time.Now().UTC()
	return cloneOrder(o), nil
}

func cloneOrder(o *Order) Order {
	c := *o
	c.Items = append([]LineItem(nil), o.Items...)
	return c
}
