package memory

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

var _ ports.Repository = (*Repository)(nil)

type key struct{ userID, bookID int64 }

// Repository keeps favourites in memory.
type Repository struct {
	items  tx.Table[key, domain.Favourite]
	nextID atomic.Int64
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{now: time.Now}
}

func (r *Repository) Add(ctx context.Context, userID, bookID int64) (*domain.Favourite, error) {
	fav := domain.Favourite{ID: r.nextID.Add(1), UserID: userID, BookID: bookID, CreatedAt: r.now()}
	inserted, err := r.items.Insert(ctx, key{userID, bookID}, fav)
	if errors.Is(err, tx.ErrConflict) {
		return nil, ports.ErrAlreadyFavourite
	}
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ports.ErrAlreadyFavourite
	}
	return &fav, nil
}

func (r *Repository) Remove(ctx context.Context, userID, bookID int64) error {
	deleted, err := r.items.Delete(ctx, key{userID, bookID})
	if err != nil {
		return err
	}
	if !deleted {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) RemoveAllForUser(ctx context.Context, userID int64) (int64, error) {
	var removed int64
	for _, fav := range r.items.Select(ctx, func(f domain.Favourite) bool { return f.UserID == userID }) {
		deleted, err := r.items.Delete(ctx, key{fav.UserID, fav.BookID})
		if err != nil {
			return removed, err
		}
		if deleted {
			removed++
		}
	}
	return removed, nil
}

func (r *Repository) List(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Favourite], error) {
	found := r.items.Select(ctx, func(f domain.Favourite) bool { return f.UserID == userID })
	favs := make([]*domain.Favourite, 0, len(found))
	for i := range found {
		favs = append(favs, &found[i])
	}
	sort.Slice(favs, func(i, j int) bool { return favs[i].ID < favs[j].ID })
	return pagination.Slice(favs, page), nil
}
