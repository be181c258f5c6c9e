package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a fact about an order, recorded in the same unit of work as the
// state change that produced it.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	OrderID   int64
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID identifies the order the event belongs to.
func (e BaseEvent) AggregateID() string {
	return strconv.FormatInt(e.OrderID, 10)
}

// OrderPlaced is raised when a cart is converted into an order.
type OrderPlaced struct {
	BaseEvent
	UserID    int64
	Total     decimal.Decimal
	LineCount int
	ItemCount int
}

// EventName returns the event type identifier.
func (e OrderPlaced) EventName() string {
	return "orders.order.placed"
}

// NewOrderPlaced describes a persisted order.
func NewOrderPlaced(order *Order) OrderPlaced {
	return OrderPlaced{
		BaseEvent: BaseEvent{OrderID: order.ID, Timestamp: order.CreatedAt},
		UserID:    order.UserID,
		Total:     order.Total,
		LineCount: len(order.Lines),
		ItemCount: order.ItemCount(),
	}
}

// OrderStatusChanged is raised when staff move an order through its lifecycle.
type OrderStatusChanged struct {
	BaseEvent
	UserID     int64
	FromStatus Status
	ToStatus   Status
}

// EventName returns the event type identifier.
func (e OrderStatusChanged) EventName() string {
	return "orders.order.status_changed"
}
