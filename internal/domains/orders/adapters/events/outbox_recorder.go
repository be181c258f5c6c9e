package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-bookstore/internal/platform/outbox"
)

const aggregateType = "order"

var _ ports.EventRecorder = (*OutboxRecorder)(nil)

// OutboxRecorder serialises order events into the transactional outbox.
type OutboxRecorder struct {
	store outbox.Store
}

func NewOutboxRecorder(store outbox.Store) *OutboxRecorder {
	return &OutboxRecorder{store: store}
}

func (r *OutboxRecorder) Record(ctx context.Context, events ...domain.Event) error {
	msgs := make([]outbox.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(payloadOf(event))
		if err != nil {
			return fmt.Errorf("encode %s: %w", event.EventName(), err)
		}
		msgs = append(msgs, outbox.NewMessage(aggregateType, event.AggregateID(), event.EventName(), payload, event.OccurredAt()))
	}
	return r.store.Append(ctx, msgs...)
}

// OrderPlacedPayload is the wire form of orders.order.placed.
type OrderPlacedPayload struct {
	OrderID    int64     `json:"orderId"`
	UserID     int64     `json:"userId"`
	TotalPrice string    `json:"totalPrice"`
	LineCount  int       `json:"lineCount"`
	ItemCount  int       `json:"itemCount"`
	OccurredAt time.Time `json:"occurredAt"`
}

// StatusChangedPayload is the wire form of orders.order.status_changed.
type StatusChangedPayload struct {
	OrderID    int64     `json:"orderId"`
	UserID     int64     `json:"userId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurredAt"`
}

func payloadOf(event domain.Event) any {
	switch e := event.(type) {
	case domain.OrderPlaced:
		return OrderPlacedPayload{
			OrderID:    e.OrderID,
			UserID:     e.UserID,
			TotalPrice: e.Total.StringFixed(2),
			LineCount:  e.LineCount,
			ItemCount:  e.ItemCount,
			OccurredAt: e.Timestamp.UTC(),
		}
	case domain.OrderStatusChanged:
		return StatusChangedPayload{
			OrderID:    e.OrderID,
			UserID:     e.UserID,
			From:       string(e.FromStatus),
			To:         string(e.ToStatus),
			OccurredAt: e.Timestamp.UTC(),
		}
	default:
		return event
	}
}
