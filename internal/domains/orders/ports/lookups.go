package ports

import (
	"context"

	cartdomain "github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	catalogdomain "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	userdomain "github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
)

// CartStore is the part of the cart repository placement drains. The cart
// repositories satisfy it.
type CartStore interface {
	LockCart(ctx context.Context, userID int64) (*cartdomain.Cart, error)
	AllLines(ctx context.Context, cartID int64) ([]*cartdomain.Line, error)
	DeleteLines(ctx context.Context, cartID int64, lineIDs []int64) (int64, error)
}

// BookFinder resolves the catalog price and title captured on each line.
type BookFinder interface {
	GetByID(ctx context.Context, id int64) (*catalogdomain.Book, error)
}

// UserFinder resolves the ordering account.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
}
