package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the order lifecycle.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
	ErrInvalidQuantity   = errors.New("order line quantity must be greater than zero")
	ErrNegativePrice     = errors.New("order line price must not be negative")
)

// transitions lists the statuses reachable from each status. Terminal
// statuses have no entry.
var transitions = map[Status][]Status{
	StatusPending: {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered, StatusCancelled},
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order status cannot change from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Line is a frozen snapshot of one purchased book.
type Line struct {
	ID        int64
	OrderID   int64
	Position  int
	BookID    int64
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal is the unit price times the quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the aggregate root of a placed purchase. Lines and total are fixed
// once the order is persisted; only the status moves afterwards.
type Order struct {
	ID        int64
	UserID    int64
	Status    Status
	Total     decimal.Decimal
	Lines     []Line
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder starts a pending order for userID with no lines.
func NewOrder(userID int64, placedAt time.Time) *Order {
	return &Order{
		UserID:    userID,
		Status:    StatusPending,
		Total:     decimal.Zero,
		CreatedAt: placedAt,
		UpdatedAt: placedAt,
	}
}

// AddLine appends a snapshot line and adds its subtotal to the total.
func (o *Order) AddLine(bookID int64, title string, unitPrice decimal.Decimal, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return ErrNegativePrice
	}
	line := Line{
		Position:  len(o.Lines) + 1,
		BookID:    bookID,
		Title:     title,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}
	o.Lines = append(o.Lines, line)
	o.Total = o.Total.Add(line.Subtotal())
	return nil
}

// Seal rejects an order without lines.
func (o *Order) Seal() error {
	if len(o.Lines) == 0 {
		return ErrEmptyCart
	}
	return nil
}

// TransitionTo moves the order to next when the lifecycle allows it.
func (o *Order) TransitionTo(next Status, at time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return &TransitionError{From: o.Status, To: next}
	}
	o.Status = next
	o.UpdatedAt = at
	return nil
}

// ItemCount sums the line quantities.
func (o *Order) ItemCount() int {
	total := 0
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}
