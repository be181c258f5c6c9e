package ports

import (
	"context"

	catalogdomain "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	userdomain "github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
)

// BookFinder resolves catalog books. The catalog repository satisfies it.
type BookFinder interface {
	GetByID(ctx context.Context, id int64) (*catalogdomain.Book, error)
}

// UserFinder resolves accounts. The users repository satisfies it.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
}
