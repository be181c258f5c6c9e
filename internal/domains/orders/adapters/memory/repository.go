package memory

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps orders in memory. Orders created or changed inside a
// tx.Memory unit of work are only visible to it until it commits.
type Repository struct {
	orders tx.Table[int64, *domain.Order]
	locks  tx.KeyedLocks

	seq        sync.Mutex
	nextID     int64
	nextLineID int64
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	stored := order.Clone()
	r.seq.Lock()
	r.nextID++
	stored.ID = r.nextID
	for i := range stored.Lines {
		r.nextLineID++
		stored.Lines[i].ID = r.nextLineID
		stored.Lines[i].OrderID = stored.ID
	}
	r.seq.Unlock()

	if err := r.orders.Put(ctx, stored.ID, stored); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, ok := r.orders.Get(ctx, id)
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	key := "order:" + strconv.FormatInt(id, 10)
	tx.Hold(ctx, key, r.locks.For(key))
	return r.GetByID(ctx, id)
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status, updatedAt time.Time) error {
	current, ok := r.orders.Get(ctx, id)
	if !ok {
		return ports.ErrNotFound
	}
	updated := current.Clone()
	updated.Status = status
	updated.UpdatedAt = updatedAt
	return r.orders.Put(ctx, id, updated)
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Order], error) {
	return r.list(ctx, page, func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (r *Repository) List(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Order], error) {
	return r.list(ctx, page, nil), nil
}

// list returns matching orders newest first.
func (r *Repository) list(ctx context.Context, page pagination.Request, match func(*domain.Order) bool) pagination.Page[*domain.Order] {
	found := r.orders.Select(ctx, match)
	matched := make([]*domain.Order, 0, len(found))
	for _, order := range found {
		matched = append(matched, order.Clone())
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return pagination.Slice(matched, page)
}
