package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
)

// ErrSessionNotFound reports an unknown or already removed token.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts bearer token persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
	// DeleteByUser revokes every session of the user and returns how many were removed.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	// PurgeExpired removes sessions that expired at or before now and returns how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
