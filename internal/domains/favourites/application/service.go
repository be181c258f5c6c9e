package application

import (
	"context"
	"errors"

	catalogports "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/ports"
	userports "github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

// Service manages a user's favourite books.
type Service struct {
	repo  ports.Repository
	books ports.BookFinder
	users ports.UserFinder
}

func NewService(repo ports.Repository, books ports.BookFinder, users ports.UserFinder) *Service {
	return &Service{repo: repo, books: books, users: users}
}

func (s *Service) AddFavourite(ctx context.Context, userID, bookID int64) (*domain.Favourite, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, mapLookupError(err)
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	fav, err := s.repo.Add(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	fav.Book = book
	return fav, nil
}

// ListFavourites pages through the user's favourites with the current book
// details attached. Books deleted from the catalog are left without details.
func (s *Service) ListFavourites(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Favourite], error) {
	result, err := s.repo.List(ctx, userID, page)
	if err != nil {
		return result, err
	}
	for _, fav := range result.Items {
		book, err := s.books.GetByID(ctx, fav.BookID)
		switch {
		case errors.Is(err, catalogports.ErrNotFound):
		case err != nil:
			return pagination.Page[*domain.Favourite]{}, err
		default:
			fav.Book = book
		}
	}
	return result, nil
}

func (s *Service) RemoveFavourite(ctx context.Context, userID, bookID int64) error {
	return s.repo.Remove(ctx, userID, bookID)
}

func mapLookupError(err error) error {
	switch {
	case errors.Is(err, catalogports.ErrNotFound):
		return ports.ErrBookNotFound
	case errors.Is(err, userports.ErrNotFound):
		return ports.ErrUserNotFound
	default:
		return err
	}
}

var _ ports.Service = (*Service)(nil)
