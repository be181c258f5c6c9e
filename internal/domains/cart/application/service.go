package application

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

// Service orchestrates cart use cases. Every mutation locks the caller's cart
// for the length of its unit of work.
type Service struct {
	repo  ports.Repository
	books ports.BookFinder
	users ports.UserFinder
	tx    tx.Transactor
}

func NewService(repo ports.Repository, books ports.BookFinder, users ports.UserFinder, transactor tx.Transactor) *Service {
	if transactor == nil {
		transactor = tx.Passthrough
	}
	return &Service{repo: repo, books: books, users: users, tx: transactor}
}

// AddItem puts quantity copies of a book in the caller's cart, merging into
// the existing line for that book when there is one.
func (s *Service) AddItem(ctx context.Context, userID, bookID int64, quantity int) (*domain.Line, error) {
	if quantity < 1 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, mapLookupError(err)
	}
	var result *domain.Line
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := s.repo.EnsureCart(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := s.books.GetByID(ctx, bookID); err != nil {
			return mapLookupError(err)
		}
		line, err := s.repo.FindLineByBook(ctx, cart.ID, bookID)
		switch {
		case errors.Is(err, ports.ErrLineNotFound):
			line, err = domain.NewLine(cart.ID, bookID, quantity)
			if err != nil {
				return mapError(err)
			}
		case err != nil:
			return err
		default:
			if err := line.Merge(quantity); err != nil {
				return mapError(err)
			}
		}
		result, err = s.repo.SaveLine(ctx, line)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateLine overwrites the quantity of an owned line. A quantity of zero
// deletes it.
func (s *Service) UpdateLine(ctx context.Context, userID, lineID int64, quantity int) (ports.LineChange, error) {
	if quantity < 0 {
		return ports.LineChange{}, mapError(domain.ErrInvalidQuantity)
	}
	var change ports.LineChange
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		line, err := s.lockedLine(ctx, userID, lineID)
		if err != nil {
			return err
		}
		removed, err := line.SetQuantity(quantity)
		if err != nil {
			return mapError(err)
		}
		if removed {
			if err := s.repo.DeleteLine(ctx, line.CartID, line.ID); err != nil {
				return err
			}
			change = ports.LineChange{Line: line, Removed: true}
			return nil
		}
		saved, err := s.repo.SaveLine(ctx, line)
		if err != nil {
			return err
		}
		change = ports.LineChange{Line: saved}
		return nil
	})
	if err != nil {
		return ports.LineChange{}, err
	}
	return change, nil
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		line, err := s.lockedLine(ctx, userID, lineID)
		if err != nil {
			return err
		}
		return s.repo.DeleteLine(ctx, line.CartID, line.ID)
	})
}

func (s *Service) GetLine(ctx context.Context, userID, lineID int64) (*domain.Line, error) {
	cart, err := s.repo.FindCart(ctx, userID)
	if errors.Is(err, ports.ErrCartNotFound) {
		return nil, ports.ErrLineNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.repo.GetLine(ctx, cart.ID, lineID)
}

// ListLines pages through the caller's cart. A user without a cart gets an empty page.
func (s *Service) ListLines(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Line], error) {
	cart, err := s.repo.FindCart(ctx, userID)
	if errors.Is(err, ports.ErrCartNotFound) {
		return pagination.Empty[*domain.Line](page), nil
	}
	if err != nil {
		return pagination.Page[*domain.Line]{}, err
	}
	return s.repo.ListLines(ctx, cart.ID, page)
}

func (s *Service) lockedLine(ctx context.Context, userID, lineID int64) (*domain.Line, error) {
	cart, err := s.repo.LockCart(ctx, userID)
	if errors.Is(err, ports.ErrCartNotFound) {
		return nil, ports.ErrLineNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.repo.GetLine(ctx, cart.ID, lineID)
}

var _ ports.Service = (*Service)(nil)
