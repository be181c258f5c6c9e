package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

const (
	defaultInterval  = time.Second
	defaultBatchSize = 100
)

// Relay moves pending outbox messages to a Publisher. Each batch is claimed,
// published, and marked inside one unit of work, so a failed publish leaves the
// batch pending and delivery is at least once.
type Relay struct {
	store     Store
	publisher Publisher
	tx        tx.Transactor
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

type RelayOption func(*Relay)

func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRelay(store Store, publisher Publisher, transactor tx.Transactor, opts ...RelayOption) *Relay {
	if transactor == nil {
		transactor = tx.Passthrough
	}
	r := &Relay{
		store:     store,
		publisher: publisher,
		tx:        transactor,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run relays batches on every tick until ctx is cancelled. A full batch is
// followed immediately by the next one.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		for {
			n, err := r.RelayOnce(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				r.logger.LogAttrs(ctx, slog.LevelWarn, "outbox relay failed", slog.String("error", err.Error()))
				break
			}
			if n < r.batchSize {
				break
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes a single batch and reports how many messages it held.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var relayed int
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		pending, err := r.store.Pending(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		if err := r.publisher.Publish(ctx, pending); err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(pending))
		for _, msg := range pending {
			ids = append(ids, msg.ID)
		}
		if err := r.store.MarkPublished(ctx, ids, r.now()); err != nil {
			return err
		}
		relayed = len(pending)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if relayed > 0 {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "outbox batch relayed", slog.Int("outbox.messages", relayed))
	}
	return relayed, nil
}
