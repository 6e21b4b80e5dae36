package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID    string     `json:"order_id"`
	Code       string     `json:"code"`
	Items      []LineItem `json:"items"`
	TotalCents int        `json:"total_cents"`
	Status     Status     `json:"status"`
}

type OrderStatusChangedPayload struct {
	OrderID    string `json:"order_id"`
	Status     Status `json:"status"`
	AssignedTo string `json:"assigned_to,omitempty"`
}
