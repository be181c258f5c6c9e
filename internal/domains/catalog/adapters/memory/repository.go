package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory book persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	books  map[int64]*domain.Book
	nextID int64
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{books: map[int64]*domain.Book{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(_ context.Context, book *domain.Book) (*domain.Book, error) {
	if book == nil {
		return nil, errors.New("book is nil")
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	clone := *book
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
		clone.CreatedAt = now
	} else if existing, ok := r.books[clone.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	} else {
		if clone.ID > r.nextID {
			r.nextID = clone.ID
		}
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	r.books[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book, ok := r.books[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *book
	return &clone, nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *Repository) List(_ context.Context, page pagination.Request) (pagination.Page[*domain.Book], error) {
	r.mu.RLock()
	list := make([]*domain.Book, 0, len(r.books))
	for _, book := range r.books {
		clone := *book
		list = append(list, &clone)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return pagination.Slice(list, page), nil
}
