package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
)

var (
	// ErrInvalidInput signals the request violated a book invariant.
	ErrInvalidInput = errors.New("invalid book input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyTitle) ||
		errors.Is(err, domain.ErrEmptyAuthor) ||
		errors.Is(err, domain.ErrEmptyCategory) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrPricePrecision) ||
		errors.Is(err, domain.ErrNegativeAvailability) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
