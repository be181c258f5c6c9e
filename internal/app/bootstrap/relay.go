package bootstrap

import (
	"log/slog"

	"github.com/Apurer/go-gin-bookstore/internal/app/config"
	"github.com/Apurer/go-gin-bookstore/internal/platform/messaging"
	"github.com/Apurer/go-gin-bookstore/internal/platform/outbox"
)

// NewRelay builds the outbox relay shipping order events to Kafka. It returns
// nil when no brokers are configured. The cleanup closes the producer.
func NewRelay(cfg config.Config, services *Services, logger *slog.Logger) (*outbox.Relay, func()) {
	if !cfg.RelayEnabled() {
		return nil, func() {}
	}
	producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	publisher := messaging.NewBreakerPublisher(producer, messaging.BreakerSettings{Logger: logger})
	relay := outbox.NewRelay(services.Outbox, publisher, services.Transactor,
		outbox.WithInterval(cfg.OutboxPollInterval),
		outbox.WithLogger(logger),
	)
	return relay, func() {
		if err := producer.Close(); err != nil {
			logger.Warn("failed to close kafka producer", slog.String("error", err.Error()))
		}
	}
}
