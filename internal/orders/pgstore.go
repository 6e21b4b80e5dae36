package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the Postgres-backed Store.
type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) Create(ctx context.Context, o Order) (Order, error) {
	if err := validateCreate(o); err != nil {
		return Order{}, err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o.ID = uuid.NewString()
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, code, customer_name, customer_email, status, assigned_to, total_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ordered_at, updated_at`,
		o.ID, o.Code, o.CustomerName, o.CustomerEmail, o.Status, o.AssignedTo, o.TotalCents).
		Scan(&o.OrderedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	for _, li := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, product_name, qty, price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			o.ID, li.ProductID, li.ProductName, li.Qty, li.PriceCents); err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *PGStore) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	err := s.DB.QueryRow(ctx, `
		SELECT id, code, customer_name, customer_email, status, assigned_to, total_cents, ordered_at, updated_at
		FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.Code, &o.CustomerName, &o.CustomerEmail, &o.Status, &o.AssignedTo, &o.TotalCents, &o.OrderedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}

	items, err := s.itemsFor(ctx, []string{id})
	if err != nil {
		return Order{}, err
	}
	o.Items = items[id]
	return o, nil
}

func (s *PGStore) List(ctx context.Context) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, code, customer_name, customer_email, status, assigned_to, total_cents, ordered_at, updated_at
		FROM orders ORDER BY ordered_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	var ids []string
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Code, &o.CustomerName, &o.CustomerEmail, &o.Status, &o.AssignedTo, &o.TotalCents, &o.OrderedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	items, err := s.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (s *PGStore) itemsFor(ctx context.Context, orderIDs []string) (map[string][]LineItem, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT order_id, product_id, product_name, qty, price_cents
		FROM order_items WHERE order_id = ANY($1) ORDER BY seq`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]LineItem, len(orderIDs))
	for rows.Next() {
		var orderID string
		var li LineItem
		if err := rows.Scan(&orderID, &li.ProductID, &li.ProductName, &li.Qty, &li.PriceCents); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], li)
	}
	return items, rows.Err()
}

func (s *PGStore) SetStatus(ctx context.Context, id string, st Status) (Order, error) {
	ct, err := s.DB.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, st)
	if err != nil {
		return Order{}, err
	}
	if ct.RowsAffected() == 0 {
		return Order{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *PGStore) CasStatus(ctx context.Context, id string, from, to Status) (Order, bool, error) {
	ct, err := s.DB.Exec(ctx, `UPDATE orders SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return Order{}, false, err
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, false, err
	}
	return o, ct.RowsAffected() == 1, nil
}

func (s *PGStore) SetAssignment(ctx context.Context, id, agent string, shipIfPaid bool) (Order, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE orders SET
			assigned_to = $2,
			status = CASE WHEN $3 AND $2 <> '' AND status = 'paid' THEN 'shipped' ELSE status END,
			updated_at = now()
		WHERE id = $1`, id, agent, shipIfPaid)
	if err != nil {
		return Order{}, err
	}
	if ct.RowsAffected() == 0 {
		return Order{}, ErrNotFound
	}
	return s.Get(ctx, id)
}
