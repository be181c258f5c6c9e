package domain

import (
	"errors"
	"time"
)

// ErrInvalidQuantity reports a quantity outside the range an operation accepts.
var ErrInvalidQuantity = errors.New("invalid cart quantity")

// Cart is the single shopping cart owned by a user. It is created on first use
// and survives order placement empty.
type Cart struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
}

// Line is one (book, quantity) entry of a cart. A cart holds at most one line per book.
type Line struct {
	ID        int64
	CartID    int64
	BookID    int64
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLine starts a line for a book not yet in the cart.
func NewLine(cartID, bookID int64, quantity int) (*Line, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return &Line{CartID: cartID, BookID: bookID, Quantity: quantity}, nil
}

// Merge adds quantity to an existing line.
func (l *Line) Merge(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	l.Quantity += quantity
	return nil
}

// SetQuantity overwrites the quantity. Zero means the line must be removed,
// which is reported through removed.
func (l *Line) SetQuantity(quantity int) (removed bool, err error) {
	if quantity < 0 {
		return false, ErrInvalidQuantity
	}
	if quantity == 0 {
		return true, nil
	}
	l.Quantity = quantity
	return false, nil
}
