package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

var ErrNotFound = errors.New("book not found")

// Repository persists catalog books.
type Repository interface {
	Save(ctx context.Context, book *domain.Book) (*domain.Book, error)
	GetByID(ctx context.Context, id int64) (*domain.Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Book], error)
}
