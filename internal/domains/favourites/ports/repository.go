package ports

import (
	"context"
	"errors"

	catalogdomain "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/domain"
	userdomain "github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

var (
	ErrNotFound         = errors.New("favourite not found")
	ErrAlreadyFavourite = errors.New("book is already a favourite")
	ErrBookNotFound     = errors.New("book not found")
	ErrUserNotFound     = errors.New("user not found")
)

// Repository stores at most one favourite per (user, book).
type Repository interface {
	Add(ctx context.Context, userID, bookID int64) (*domain.Favourite, error)
	Remove(ctx context.Context, userID, bookID int64) error
	// RemoveAllForUser drops every favourite of the user and reports how many there were.
	RemoveAllForUser(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Favourite], error)
}

type BookFinder interface {
	GetByID(ctx context.Context, id int64) (*catalogdomain.Book, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
}
