package orders

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/application"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
)

// Application error types carried across the workflow boundary.
const (
	ErrorTypeEmptyCart           = "EmptyCart"
	ErrorTypeUserNotFound        = "UserNotFound"
	ErrorTypeItemNotFound        = "ItemNotFound"
	ErrorTypeIdempotencyConflict = "IdempotencyConflict"
	ErrorTypeCartChanged         = "CartChanged"
	ErrorTypeInvalidInput        = "InvalidInput"
)

var errorTypes = []struct {
	kind     string
	sentinel error
}{
	{ErrorTypeEmptyCart, domain.ErrEmptyCart},
	{ErrorTypeUserNotFound, ports.ErrUserNotFound},
	{ErrorTypeItemNotFound, ports.ErrItemNotFound},
	{ErrorTypeIdempotencyConflict, ports.ErrIdempotencyConflict},
	{ErrorTypeCartChanged, ports.ErrCartChanged},
	{ErrorTypeInvalidInput, application.ErrInvalidInput},
}

// EncodeError turns business rejections into non-retryable application
// errors typed by kind. Other errors pass through and stay retryable.
func EncodeError(err error) error {
	for _, t := range errorTypes {
		if errors.Is(err, t.sentinel) {
			return temporal.NewNonRetryableApplicationError(err.Error(), t.kind, err)
		}
	}
	return err
}

// DecodeError maps a workflow or activity failure back to the sentinel of its kind.
func DecodeError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, t := range errorTypes {
		if appErr.Type() == t.kind {
			if t.sentinel == application.ErrInvalidInput {
				return fmt.Errorf("%w: %s", t.sentinel, appErr.Message())
			}
			return t.sentinel
		}
	}
	return err
}
