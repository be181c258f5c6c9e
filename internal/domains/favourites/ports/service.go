package ports

import (
	"context"

	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

// Service exposes favourite book use cases to adapters.
type Service interface {
	AddFavourite(ctx context.Context, userID, bookID int64) (*domain.Favourite, error)
	ListFavourites(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Favourite], error)
	RemoveFavourite(ctx context.Context, userID, bookID int64) error
}
