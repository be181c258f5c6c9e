package ports

import (
	"context"

	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

// LineChange is the outcome of overwriting a line quantity. When Removed is
// true the line no longer exists and Line holds its last state.
type LineChange struct {
	Line    *domain.Line
	Removed bool
}

// Service exposes cart use cases to adapters.
type Service interface {
	AddItem(ctx context.Context, userID, bookID int64, quantity int) (*domain.Line, error)
	UpdateLine(ctx context.Context, userID, lineID int64, quantity int) (LineChange, error)
	RemoveLine(ctx context.Context, userID, lineID int64) error
	GetLine(ctx context.Context, userID, lineID int64) (*domain.Line, error)
	ListLines(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Line], error)
}
