package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the key was already used for a different request.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord ties a client supplied key to the order it produced.
type IdempotencyRecord struct {
	Key         string
	UserID      int64
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore persists placement keys so retries replay the original order.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the record. When the key already exists for the same request
	// and order the stored record is returned; otherwise ErrIdempotencyConflict
	// is returned with the stored record.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
