// Package outbox stores domain events next to the state change that produced
// them and relays them to a message broker.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is one event waiting in, or already relayed from, the outbox.
type Message struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	OccurredAt    time.Time
	PublishedAt   *time.Time
}

// Store persists outbox messages. Append joins the unit of work carried by
// ctx. Pending claims unpublished messages in occurrence order; claimed rows
// stay locked until the unit of work ends.
type Store interface {
	Append(ctx context.Context, msgs ...Message) error
	Pending(ctx context.Context, limit int) ([]Message, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Publisher delivers messages to the broker.
type Publisher interface {
	Publish(ctx context.Context, msgs []Message) error
}

// NewMessage builds a message with a fresh id.
func NewMessage(aggregateType, aggregateID, eventType string, payload []byte, occurredAt time.Time) Message {
	return Message{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		OccurredAt:    occurredAt,
	}
}
