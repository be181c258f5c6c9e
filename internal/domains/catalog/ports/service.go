package ports

import (
	"context"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	CreateBook(ctx context.Context, details domain.Details) (*domain.Book, error)
	UpdateBook(ctx context.Context, id int64, details domain.Details) (*domain.Book, error)
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	ListBooks(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Book], error)
	DeleteBook(ctx context.Context, id int64) error
}
