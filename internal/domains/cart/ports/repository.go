package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrLineNotFound = errors.New("cart line not found")
	ErrItemNotFound = errors.New("book not found")
	ErrUserNotFound = errors.New("user not found")
)

// Repository persists carts and their lines. Every line accessor is scoped by
// cart id so a line can only be reached through its owning cart.
//
// LockCart and EnsureCart take an exclusive lock on the user's cart that lasts
// until the surrounding unit of work ends.
type Repository interface {
	LockCart(ctx context.Context, userID int64) (*domain.Cart, error)
	EnsureCart(ctx context.Context, userID int64) (*domain.Cart, error)
	FindCart(ctx context.Context, userID int64) (*domain.Cart, error)
	// DeleteCart drops the user's cart and every line in it. A missing cart is not an error.
	DeleteCart(ctx context.Context, userID int64) error

	GetLine(ctx context.Context, cartID, lineID int64) (*domain.Line, error)
	FindLineByBook(ctx context.Context, cartID, bookID int64) (*domain.Line, error)
	SaveLine(ctx context.Context, line *domain.Line) (*domain.Line, error)
	DeleteLine(ctx context.Context, cartID, lineID int64) error
	ListLines(ctx context.Context, cartID int64, page pagination.Request) (pagination.Page[*domain.Line], error)
	// AllLines returns every line of the cart ordered by id, without paging.
	AllLines(ctx context.Context, cartID int64) ([]*domain.Line, error)
	// DeleteLines removes the given lines of the cart and reports how many were removed.
	DeleteLines(ctx context.Context, cartID int64, lineIDs []int64) (int64, error)
}
