// Package messaging publishes outbox messages to Kafka.
package messaging

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Apurer/go-gin-bookstore/internal/platform/outbox"
)

var producerTracer = otel.Tracer("github.com/Apurer/go-gin-bookstore/internal/platform/messaging")

// Header keys set on every published message.
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
	HeaderAggregate = "aggregate_type"
)

// MessageWriter is the subset of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ outbox.Publisher = (*Producer)(nil)

// Producer writes outbox messages to one topic, keyed by aggregate id so the
// events of an order stay ordered within a partition.
type Producer struct {
	writer MessageWriter
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           100 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
	}, topic)
}

// NewProducerWithWriter wires an existing writer.
func NewProducerWithWriter(writer MessageWriter, topic string) *Producer {
	return &Producer{writer: writer, topic: topic}
}

func (p *Producer) Publish(ctx context.Context, msgs []outbox.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ctx, span := producerTracer.Start(ctx, "send "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingBatchMessageCount(len(msgs)),
		),
	)
	defer span.End()

	batch := make([]kafka.Message, 0, len(msgs))
	for _, msg := range msgs {
		km := kafka.Message{
			Key:   []byte(msg.AggregateID),
			Value: msg.Payload,
			Time:  msg.OccurredAt,
			Headers: []kafka.Header{
				{Key: HeaderEventType, Value: []byte(msg.EventType)},
				{Key: HeaderEventID, Value: []byte(msg.ID.String())},
				{Key: HeaderAggregate, Value: []byte(msg.AggregateType)},
			},
		}
		otel.GetTextMapPropagator().Inject(ctx, NewMessageCarrier(&km))
		batch = append(batch, km)
	}

	if err := p.writer.WriteMessages(ctx, batch...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
