package statuscache

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ardiansetya/go-shop-admin/internal/kafka"
	"github.com/ardiansetya/go-shop-admin/internal/orders"
	"github.com/ardiansetya/go-shop-admin/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Service keeps the Redis order-status cache in sync with order events. It is
// a consumer of the ordering engine's events, not part of its consistency
// guarantees: the store stays the source of truth and cache entries expire.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

type cachedStatus struct {
	Status     orders.Status `json:"status"`
	AssignedTo string        `json:"assigned_to,omitempty"`
}

// HandleEvent is installed as the consumer handler for both order topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event id
	dkey := fmt.Sprintf(redisx.KeyDedup, "statuscache", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	var entry cachedStatus
	var orderID string
	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		orderID = p.OrderID
		entry = cachedStatus{Status: p.Status}
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		orderID = p.OrderID
		entry = cachedStatus{Status: p.Status, AssignedTo: p.AssignedTo}
	default:
		return nil // ignore
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	return s.Redis.Set(ctx, key, kafkax.MustMarshal(entry), redisx.TTLStatusCache).Err()
}
