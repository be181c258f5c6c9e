package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrUserNotFound = errors.New("user not found")
	ErrItemNotFound = errors.New("book not found")
	// ErrCartChanged reports that the cart lines cleared by a placement were
	// not the lines it priced.
	ErrCartChanged = errors.New("cart changed during placement")
)

// Repository persists orders. Lines are written once by Create and never
// touched afterwards; only the status column is updated.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// GetByIDForUpdate loads the order and locks it until the unit of work ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Order], error)
	List(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Order], error)
}
