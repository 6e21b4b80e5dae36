package orders

import "time"

// LineItem is one product/quantity/price triple within an order. Name and
// price are snapshotted from the product at placement time, so later catalog
// edits do not rewrite historical orders.
type LineItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Qty         int    `json:"qty"`
	PriceCents  int    `json:"price_cents"`
}

func (li LineItem) SubtotalCents() int { return li.PriceCents * li.Qty }

type Order struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"` // human-facing order code, supplied by the caller
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	Items         []LineItem `json:"items"`
	TotalCents    int        `json:"total_cents"`
	Status        Status     `json:"status"`
	AssignedTo    string     `json:"assigned_to,omitempty"` // delivery agent, empty = unassigned
	OrderedAt     time.Time  `json:"ordered_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
