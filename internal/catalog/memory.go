package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is a mutex-guarded in-memory catalog. It backs unit tests and local
// development; the production wiring uses PG.
type Memory struct {
	mu       sync.RWMutex
	products map[string]*Product
}

func NewMemory() *Memory {
	return &Memory{products: make(map[string]*Product)}
}

func (s *Memory) TryReserve(_ context.Context, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQty
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return 0, ErrNotFound
	}
	if p.Stock < qty {
		return 0, &InsufficientStockError{ProductID: productID, Required: qty, Available: p.Stock}
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now().UTC()
	return p.Stock, nil
}

func (s *Memory) Release(_ context.Context, productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQty
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return ErrNotFound
	}
	p.Stock += qty
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Memory) Adjust(_ context.Context, productID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return 0, ErrNotFound
	}
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.UpdatedAt = time.Now().UTC()
	return p.Stock, nil
}

func (s *Memory) Get(_ context.Context, productID string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return Product{}, ErrNotFound
	}
	return *p, nil
}

func (s *Memory) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	// newest first, matching the PG ordering
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) Create(_ context.Context, name, imageURL string, priceCents, stock int) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p := &Product{
		ID:         uuid.NewString(),
		Name:       name,
		ImageURL:   imageURL,
		PriceCents: priceCents,
		Stock:      stock,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.products[p.ID] = p
	return *p, nil
}

func (s *Memory) Update(_ context.Context, id string, name, imageURL string, priceCents, stock int) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	p.Name = name
	p.ImageURL = imageURL
	p.PriceCents = priceCents
	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
}

func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}
