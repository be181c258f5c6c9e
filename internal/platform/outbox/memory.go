package outbox

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the outbox in process. Messages appended inside a
// tx.Memory unit of work reach the relay only once it commits.
type MemoryStore struct {
	messages tx.Table[uuid.UUID, stored]
	seq      atomic.Int64
	claim    sync.Mutex
}

// stored remembers append order, which uuids do not carry.
type stored struct {
	seq int64
	msg Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, msgs ...Message) error {
	for _, msg := range msgs {
		if err := s.messages.Put(ctx, msg.ID, stored{seq: s.seq.Add(1), msg: cloneMessage(msg)}); err != nil {
			return err
		}
	}
	return nil
}

// Pending returns up to limit unpublished messages in append order. Inside a
// unit of work concurrent relays are serialized.
func (s *MemoryStore) Pending(ctx context.Context, limit int) ([]Message, error) {
	tx.Hold(ctx, "outbox", &s.claim)
	rows := s.sorted(ctx, func(row stored) bool { return row.msg.PublishedAt == nil })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	pending := make([]Message, 0, len(rows))
	for _, row := range rows {
		pending = append(pending, cloneMessage(row.msg))
	}
	return pending, nil
}

func (s *MemoryStore) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	for _, id := range ids {
		row, ok := s.messages.Get(ctx, id)
		if !ok || row.msg.PublishedAt != nil {
			continue
		}
		published := at
		row.msg = cloneMessage(row.msg)
		row.msg.PublishedAt = &published
		if err := s.messages.Put(ctx, id, row); err != nil {
			return err
		}
	}
	return nil
}

// Messages returns a snapshot of every committed message in append order.
func (s *MemoryStore) Messages() []Message {
	rows := s.sorted(context.Background(), nil)
	out := make([]Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneMessage(row.msg))
	}
	return out
}

func (s *MemoryStore) sorted(ctx context.Context, match func(stored) bool) []stored {
	rows := s.messages.Select(ctx, match)
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	return rows
}

func cloneMessage(msg Message) Message {
	clone := msg
	clone.Payload = append([]byte(nil), msg.Payload...)
	if msg.PublishedAt != nil {
		at := *msg.PublishedAt
		clone.PublishedAt = &at
	}
	return clone
}
