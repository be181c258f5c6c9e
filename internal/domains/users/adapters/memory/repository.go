package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user persistence adapter.
type Repository struct {
	users      tx.Table[int64, domain.User]
	byUsername tx.Table[string, int64]
	nextID     atomic.Int64
	now        func() time.Time
}

func NewRepository() *Repository {
	return &Repository{now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	clone := *user
	clone.ID = r.nextID.Add(1)
	inserted, err := r.byUsername.Insert(ctx, clone.Username, clone.ID)
	if errors.Is(err, tx.ErrConflict) || (err == nil && !inserted) {
		return nil, ports.ErrDuplicateUsername
	}
	if err != nil {
		return nil, err
	}
	clone.CreatedAt = r.now()
	clone.UpdatedAt = clone.CreatedAt
	if err := r.users.Put(ctx, clone.ID, clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *Repository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	existing, ok := r.users.Get(ctx, user.ID)
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	clone.Username = existing.Username
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = r.now()
	if err := r.users.Put(ctx, clone.ID, clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	existing, ok := r.users.Get(ctx, id)
	if !ok {
		return ports.ErrNotFound
	}
	if _, err := r.users.Delete(ctx, id); err != nil {
		return err
	}
	_, err := r.byUsername.Delete(ctx, existing.Username)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := r.users.Get(ctx, id)
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &user, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	id, ok := r.byUsername.Get(ctx, strings.TrimSpace(username))
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) List(ctx context.Context, page pagination.Request) (pagination.Page[*domain.User], error) {
	found := r.users.Select(ctx, nil)
	users := make([]*domain.User, 0, len(found))
	for i := range found {
		users = append(users, &found[i])
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return pagination.Slice(users, page), nil
}
