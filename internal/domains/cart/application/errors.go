package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/ports"
	catalogports "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	userports "github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
)

var (
	// ErrInvalidInput signals the request violated a cart invariant.
	ErrInvalidInput = errors.New("invalid cart input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func mapLookupError(err error) error {
	switch {
	case errors.Is(err, catalogports.ErrNotFound):
		return ports.ErrItemNotFound
	case errors.Is(err, userports.ErrNotFound):
		return ports.ErrUserNotFound
	default:
		return err
	}
}
