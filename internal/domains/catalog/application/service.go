package application

import (
	"context"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

// Service orchestrates catalog use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateBook(ctx context.Context, details domain.Details) (*domain.Book, error) {
	book, err := domain.NewBook(details)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, book)
}

// UpdateBook replaces the attributes of an existing book. Orders already placed
// keep the price captured at placement.
func (s *Service) UpdateBook(ctx context.Context, id int64, details domain.Details) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := book.Apply(details); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, book)
}

func (s *Service) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Book], error) {
	return s.repo.List(ctx, page)
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

var _ ports.Service = (*Service)(nil)
