package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Apurer/go-gin-bookstore/internal/platform/outbox"
)

var _ outbox.Publisher = (*BreakerPublisher)(nil)

// BreakerPublisher stops calling the broker after consecutive failures and
// probes it again once the open timeout elapses. While open, Publish fails
// fast with gobreaker.ErrOpenState and the relay keeps the batch pending.
type BreakerPublisher struct {
	inner   outbox.Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Logger           *slog.Logger
}

func NewBreakerPublisher(inner outbox.Publisher, cfg BreakerSettings) *BreakerPublisher {
	if cfg.Name == "" {
		cfg.Name = "kafka-producer"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}
	if cfg.Logger != nil {
		logger := cfg.Logger
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
		}
	}
	return &BreakerPublisher{inner: inner, breaker: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (p *BreakerPublisher) Publish(ctx context.Context, msgs []outbox.Message) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.inner.Publish(ctx, msgs)
	})
	return err
}

// State reports the breaker state.
func (p *BreakerPublisher) State() gobreaker.State {
	return p.breaker.State()
}
