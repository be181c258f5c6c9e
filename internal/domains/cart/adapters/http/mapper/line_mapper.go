package mapper

import (
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
)

// AddItemRequest is the body of an add-to-cart call.
type AddItemRequest struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

// UpdateLineRequest is the body of a quantity overwrite. Quantity is a pointer
// so a missing field can be told apart from an explicit zero.
type UpdateLineRequest struct {
	Quantity *int `json:"quantity"`
}

// Line is the transport-layer shape of a cart line.
type Line struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"bookId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromDomainLine converts a domain line to the transport representation.
func FromDomainLine(line *domain.Line) Line {
	if line == nil {
		return Line{}
	}
	return Line{
		ID:        line.ID,
		BookID:    line.BookID,
		Quantity:  line.Quantity,
		CreatedAt: line.CreatedAt,
		UpdatedAt: line.UpdatedAt,
	}
}
