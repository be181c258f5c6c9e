package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	platformpostgres "github.com/Apurer/go-gin-bookstore/internal/platform/postgres"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore keeps the outbox in the outbox_events table.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore wires a PostgreSQL-backed outbox. Caller manages DB lifecycle.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type eventRecord struct {
	ID            uuid.UUID  `gorm:"primaryKey;column:id;type:uuid"`
	AggregateType string     `gorm:"column:aggregate_type"`
	AggregateID   string     `gorm:"column:aggregate_id"`
	EventType     string     `gorm:"column:event_type"`
	Payload       string     `gorm:"column:payload;type:jsonb"`
	OccurredAt    time.Time  `gorm:"column:occurred_at"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
}

func (eventRecord) TableName() string { return "outbox_events" }

func (s *PostgresStore) Append(ctx context.Context, msgs ...Message) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	records := make([]eventRecord, 0, len(msgs))
	for _, msg := range msgs {
		records = append(records, eventRecord{
			ID:            msg.ID,
			AggregateType: msg.AggregateType,
			AggregateID:   msg.AggregateID,
			EventType:     msg.EventType,
			Payload:       string(msg.Payload),
			OccurredAt:    msg.OccurredAt,
		})
	}
	return platformpostgres.Conn(ctx, s.db).Create(&records).Error
}

// Pending claims unpublished rows with FOR UPDATE SKIP LOCKED so concurrent
// relays never publish the same batch.
func (s *PostgresStore) Pending(ctx context.Context, limit int) ([]Message, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []eventRecord
	if err := platformpostgres.Conn(ctx, s.db).
		Clauses(platformpostgres.ForUpdateSkipLocked()).
		Where("published_at IS NULL").
		Order("occurred_at, id").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(records))
	for _, rec := range records {
		msgs = append(msgs, Message{
			ID:            rec.ID,
			AggregateType: rec.AggregateType,
			AggregateID:   rec.AggregateID,
			EventType:     rec.EventType,
			Payload:       []byte(rec.Payload),
			OccurredAt:    rec.OccurredAt,
		})
	}
	return msgs, nil
}

func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return platformpostgres.Conn(ctx, s.db).
		Model(&eventRecord{}).
		Where("id IN ? AND published_at IS NULL", ids).
		Update("published_at", at).Error
}

func (s *PostgresStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres outbox not configured")
	}
	return nil
}
