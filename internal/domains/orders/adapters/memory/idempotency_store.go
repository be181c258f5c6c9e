package memory

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore provides an in-memory implementation for development and tests.
type IdempotencyStore struct {
	records tx.Table[string, ports.IdempotencyRecord]
	now     func() time.Time
}

// NewIdempotencyStore constructs an empty in-memory store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	record, ok := s.records.Get(ctx, key)
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Save stores the record unless the key is taken. A key claimed by a unit of
// work that has not committed yet counts as taken by a different request.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	inserted, err := s.records.Insert(ctx, record.Key, record)
	if errors.Is(err, tx.ErrConflict) {
		return nil, ports.ErrIdempotencyConflict
	}
	if err != nil {
		return nil, err
	}
	if inserted {
		saved := record
		return &saved, nil
	}

	existing, _ := s.records.Get(ctx, record.Key)
	if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID {
		return &existing, ports.ErrIdempotencyConflict
	}
	return &existing, nil
}
