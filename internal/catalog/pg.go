package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is the Postgres-backed catalog. TryReserve relies on row-level atomicity
// of a conditional UPDATE, so no explicit lock is taken across products.
type PG struct{ DB *pgxpool.Pool }

func (s *PG) TryReserve(ctx context.Context, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQty
	}
	var remaining int
	err := s.DB.QueryRow(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING stock`, productID, qty).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// no row matched: missing product or shortage
	var available int
	err = s.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return 0, &InsufficientStockError{ProductID: productID, Required: qty, Available: available}
}

func (s *PG) Release(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQty
	}
	ct, err := s.DB.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PG) Adjust(ctx context.Context, productID string, delta int) (int, error) {
	var newStock int
	err := s.DB.QueryRow(ctx, `
		UPDATE products SET stock = GREATEST(stock + $2, 0), updated_at = now()
		WHERE id = $1
		RETURNING stock`, productID, delta).Scan(&newStock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return newStock, nil
}

func (s *PG) Get(ctx context.Context, productID string) (Product, error) {
	var p Product
	err := s.DB.QueryRow(ctx, `
		SELECT id, name, image_url, price_cents, stock, created_at, updated_at
		FROM products WHERE id = $1`, productID).
		Scan(&p.ID, &p.Name, &p.ImageURL, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PG) List(ctx context.Context) ([]Product, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, image_url, price_cents, stock, created_at, updated_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.ImageURL, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PG) Create(ctx context.Context, name, imageURL string, priceCents, stock int) (Product, error) {
	id := uuid.NewString()
	var p Product
	err := s.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, image_url, price_cents, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, image_url, price_cents, stock, created_at, updated_at`,
		id, name, imageURL, priceCents, stock).
		Scan(&p.ID, &p.Name, &p.ImageURL, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PG) Update(ctx context.Context, id string, name, imageURL string, priceCents, stock int) (Product, error) {
	var p Product
	err := s.DB.QueryRow(ctx, `
		UPDATE products SET name = $2, image_url = $3, price_cents = $4, stock = $5, updated_at = now()
		WHERE id = $1
		RETURNING id, name, image_url, price_cents, stock, created_at, updated_at`,
		id, name, imageURL, priceCents, stock).
		Scan(&p.ID, &p.Name, &p.ImageURL, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PG) Delete(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
