package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ardiansetya/go-shop-admin/internal/catalog"
	"github.com/ardiansetya/go-shop-admin/internal/orders"
	"github.com/go-chi/chi/v5"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePublisher records published messages instead of writing to Kafka.
type fakePublisher struct {
	mu       sync.Mutex
	messages []kafkago.Message
}

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, kafkago.Message{Key: key, Value: value, Headers: headers})
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fixture struct {
	catalog *catalog.Memory
	store   *orders.MemStore
	router  *chi.Mux
	placed  *fakePublisher
	status  *fakePublisher
}

func newFixture() *fixture {
	cat := catalog.NewMemory()
	store := orders.NewMemStore()
	placed := &fakePublisher{}
	status := &fakePublisher{}

	router := NewRouter()
	oh := &OrdersHandler{
		Placer:        &orders.Placement{Catalog: cat, Coord: &orders.Coordinator{Ledger: cat}, Store: store},
		Lifecycle:     &orders.Lifecycle{Store: store},
		Store:         store,
		Placed:        placed,
		StatusChanged: status,
		Service:       "test",
	}
	oh.Register(router)
	ph := &ProductsHandler{Catalog: cat}
	ph.Register(router)

	return &fixture{catalog: cat, store: store, router: router, placed: placed, status: status}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) product(t *testing.T, name string, priceCents, stock int) catalog.Product {
	t.Helper()
	p, err := f.catalog.Create(context.Background(), name, "", priceCents, stock)
	require.NoError(t, err)
	return p
}

func TestPlaceOrderEndpoint(t *testing.T) {
	f := newFixture()
	mug := f.product(t, "mug", 500, 10)

	rec := f.do(t, http.MethodPost, "/orders", PlaceOrderReq{
		Code:          "ORD-1",
		CustomerName:  "Dina",
		CustomerEmail: "dina@example.com",
		Items:         []orders.LineItemRequest{{ProductID: mug.ID, Qty: 2}},
		Paid:          true,
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var o orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, orders.StatusPaid, o.Status)
	assert.Equal(t, 1000, o.TotalCents)

	assert.Equal(t, 1, f.placed.count())
}

func TestPlaceOrderEndpoint_InsufficientStock(t *testing.T) {
	f := newFixture()
	mug := f.product(t, "mug", 500, 1)

	rec := f.do(t, http.MethodPost, "/orders", PlaceOrderReq{
		Code:          "ORD-2",
		CustomerName:  "Dina",
		CustomerEmail: "dina@example.com",
		Items:         []orders.LineItemRequest{{ProductID: mug.ID, Qty: 2}},
		Paid:          true,
	})

	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, mug.ID, body["product_id"])
	assert.Equal(t, float64(2), body["required"])
	assert.Equal(t, float64(1), body["available"])

	assert.Equal(t, 0, f.placed.count())
}

func TestPlaceOrderEndpoint_EmptyItems(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/orders", PlaceOrderReq{
		Code:          "ORD-3",
		CustomerName:  "Dina",
		CustomerEmail: "dina@example.com",
		Paid:          true,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	f := newFixture()
	mug := f.product(t, "mug", 500, 10)

	rec := f.do(t, http.MethodPost, "/orders", PlaceOrderReq{
		Code: "ORD-4", CustomerName: "Dina", CustomerEmail: "dina@example.com",
		Items: []orders.LineItemRequest{{ProductID: mug.ID, Qty: 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var o orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))

	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/orders/%s/status", o.ID), StatusReq{Status: orders.StatusPaid})
	require.Equal(t, http.StatusOK, rec.Code)

	// paid -> paid is not a legal transition
	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/orders/%s/status", o.ID), StatusReq{Status: orders.StatusPaid})
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, 1, f.status.count())
}

func TestOverrideStatusEndpoint(t *testing.T) {
	f := newFixture()
	mug := f.product(t, "mug", 500, 10)

	rec := f.do(t, http.MethodPost, "/orders", PlaceOrderReq{
		Code: "ORD-5", CustomerName: "Dina", CustomerEmail: "dina@example.com",
		Items: []orders.LineItemRequest{{ProductID: mug.ID, Qty: 1}}, Paid: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var o orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))

	// skips the state machine entirely
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/admin/orders/%s/status", o.ID), StatusReq{Status: orders.StatusPending})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, orders.StatusPending, updated.Status)

	// unknown status values are still rejected
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/admin/orders/%s/status", o.ID), StatusReq{Status: "cancelled"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignEndpoint_PaidShips(t *testing.T) {
	f := newFixture()
	mug := f.product(t, "mug", 500, 10)

	rec := f.do(t, http.MethodPost, "/orders", PlaceOrderReq{
		Code: "ORD-6", CustomerName: "Dina", CustomerEmail: "dina@example.com",
		Items: []orders.LineItemRequest{{ProductID: mug.ID, Qty: 1}}, Paid: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var o orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))

	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/orders/%s/assign", o.ID), AssignReq{AssignedTo: "agent@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "agent@x.com", updated.AssignedTo)
	assert.Equal(t, orders.StatusShipped, updated.Status)
}

func TestListOrdersEndpoint(t *testing.T) {
	f := newFixture()
	mug := f.product(t, "mug", 500, 10)

	for _, code := range []string{"ORD-7", "ORD-8"} {
		rec := f.do(t, http.MethodPost, "/orders", PlaceOrderReq{
			Code: code, CustomerName: "Dina", CustomerEmail: "dina@example.com",
			Items: []orders.LineItemRequest{{ProductID: mug.ID, Qty: 1}},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "ORD-8", out[0].Code)
	assert.Equal(t, "ORD-7", out[1].Code)
}

func TestAdjustStockEndpoint_FloorsAtZero(t *testing.T) {
	f := newFixture()
	mug := f.product(t, "mug", 500, 3)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/products/%s/stock", mug.ID), AdjustStockReq{Delta: -10})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body["stock"])
}
