package memory

import (
	"context"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	sessions tx.Table[string, domain.Session]
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	return s.sessions.Put(ctx, session.Token, session)
}

func (s *SessionStore) Get(ctx context.Context, token string) (domain.Session, error) {
	session, ok := s.sessions.Get(ctx, token)
	if !ok {
		return domain.Session{}, ports.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	deleted, err := s.sessions.Delete(ctx, token)
	if err != nil {
		return err
	}
	if !deleted {
		return ports.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	return s.deleteWhere(ctx, func(session domain.Session) bool { return session.UserID == userID })
}

func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.deleteWhere(ctx, func(session domain.Session) bool { return session.Expired(now) })
}

func (s *SessionStore) deleteWhere(ctx context.Context, match func(domain.Session) bool) (int64, error) {
	var removed int64
	for _, session := range s.sessions.Select(ctx, match) {
		deleted, err := s.sessions.Delete(ctx, session.Token)
		if err != nil {
			return removed, err
		}
		if deleted {
			removed++
		}
	}
	return removed, nil
}
