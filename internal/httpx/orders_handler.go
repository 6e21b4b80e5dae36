package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardiansetya/go-shop-admin/internal/catalog"
	kafkax "github.com/ardiansetya/go-shop-admin/internal/kafka"
	"github.com/ardiansetya/go-shop-admin/internal/orders"
	"github.com/ardiansetya/go-shop-admin/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is the slice of the Kafka producer the handlers need; tests swap
// in a recorder.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Placer        *orders.Placement
	Lifecycle     *orders.Lifecycle
	Store         orders.Store
	Placed        Publisher // order.placed
	StatusChanged Publisher // order.status.changed
	Redis         *redis.Client
	Service       string
}

type PlaceOrderReq struct {
	Code          string                   `json:"code"`
	CustomerName  string                   `json:"customer_name"`
	CustomerEmail string                   `json:"customer_email"`
	Items         []orders.LineItemRequest `json:"items"`
	Paid          bool                     `json:"paid"`
}

type StatusReq struct {
	Status orders.Status `json:"status"`
}

type AssignReq struct {
	AssignedTo string `json:"assigned_to"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Put("/admin/orders/{id}/status", h.overrideStatus)
	r.Patch("/orders/{id}/assign", h.assign)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	var insuf *catalog.InsufficientStockError
	switch {
	case errors.As(err, &insuf):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      insuf.Error(),
			"product_id": insuf.ProductID,
			"required":   insuf.Required,
			"available":  insuf.Available,
		})
	case errors.Is(err, orders.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrTotalMismatch),
		errors.Is(err, orders.ErrUnknownStatus),
		errors.Is(err, catalog.ErrInvalidQty):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.CustomerName == "" || req.CustomerEmail == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Placer.PlaceOrder(ctx, req.Code, req.CustomerName, req.CustomerEmail, req.Items, req.Paid)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.publishPlaced(r, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Store.List(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getOrderStatus serves the dashboard's polling path: Redis cache first, store
// as fallback (and cache refill).
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Store.Get(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	body := map[string]any{"status": o.Status}
	if o.AssignedTo != "" {
		body["assigned_to"] = o.AssignedTo
	}
	b, _ := json.Marshal(body)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, json.RawMessage(b))
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Lifecycle.Transition(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.publishStatusChanged(r, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) overrideStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Lifecycle.Override(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.publishStatusChanged(r, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) assign(w http.ResponseWriter, r *http.Request) {
	var req AssignReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Lifecycle.Assign(ctx, chi.URLParam(r, "id"), req.AssignedTo)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.publishStatusChanged(r, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) publishPlaced(r *http.Request, o orders.Order) {
	if h.Placed == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:    o.ID,
			Code:       o.Code,
			Items:      o.Items,
			TotalCents: o.TotalCents,
			Status:     o.Status,
		}),
	}
	h.Placed.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) publishStatusChanged(r *http.Request, o orders.Order) {
	if h.StatusChanged == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID:    o.ID,
			Status:     o.Status,
			AssignedTo: o.AssignedTo,
		}),
	}
	h.StatusChanged.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
