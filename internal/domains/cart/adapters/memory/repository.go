package memory

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

var _ ports.Repository = (*Repository)(nil)

var errDuplicateLine = errors.New("cart already has a line for this book")

// Repository is an in-memory cart persistence adapter. Rows written inside a
// tx.Memory unit of work stay invisible to other callers until it commits,
// and cart locks are keyed mutexes held until it ends.
type Repository struct {
	carts      tx.Table[int64, domain.Cart] // keyed by user id
	lines      tx.Table[int64, domain.Line]
	nextCartID atomic.Int64
	nextLineID atomic.Int64
	locks      tx.KeyedLocks
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

func (r *Repository) LockCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	r.hold(ctx, userID)
	return r.FindCart(ctx, userID)
}

func (r *Repository) EnsureCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	r.hold(ctx, userID)
	if cart, ok := r.carts.Get(ctx, userID); ok {
		return &cart, nil
	}
	cart := domain.Cart{ID: r.nextCartID.Add(1), UserID: userID, CreatedAt: r.now()}
	inserted, err := r.carts.Insert(ctx, userID, cart)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return r.FindCart(ctx, userID)
	}
	return &cart, nil
}

func (r *Repository) FindCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, ok := r.carts.Get(ctx, userID)
	if !ok {
		return nil, ports.ErrCartNotFound
	}
	return &cart, nil
}

// DeleteCart removes the user's cart together with every line in it.
func (r *Repository) DeleteCart(ctx context.Context, userID int64) error {
	r.hold(ctx, userID)
	cart, ok := r.carts.Get(ctx, userID)
	if !ok {
		return nil
	}
	for _, line := range r.linesOf(ctx, cart.ID) {
		if _, err := r.lines.Delete(ctx, line.ID); err != nil {
			return err
		}
	}
	_, err := r.carts.Delete(ctx, userID)
	return err
}

func (r *Repository) GetLine(ctx context.Context, cartID, lineID int64) (*domain.Line, error) {
	line, ok := r.lines.Get(ctx, lineID)
	if !ok || line.CartID != cartID {
		return nil, ports.ErrLineNotFound
	}
	return &line, nil
}

func (r *Repository) FindLineByBook(ctx context.Context, cartID, bookID int64) (*domain.Line, error) {
	found := r.lines.Select(ctx, func(line domain.Line) bool {
		return line.CartID == cartID && line.BookID == bookID
	})
	if len(found) == 0 {
		return nil, ports.ErrLineNotFound
	}
	return &found[0], nil
}

func (r *Repository) SaveLine(ctx context.Context, line *domain.Line) (*domain.Line, error) {
	if line == nil {
		return nil, errors.New("line is nil")
	}
	if line.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	clone := *line
	now := r.now()
	if clone.ID == 0 {
		if _, err := r.FindLineByBook(ctx, clone.CartID, clone.BookID); err == nil {
			return nil, errDuplicateLine
		}
		clone.ID = r.nextLineID.Add(1)
		clone.CreatedAt = now
	} else {
		existing, ok := r.lines.Get(ctx, clone.ID)
		if !ok || existing.CartID != clone.CartID {
			return nil, ports.ErrLineNotFound
		}
		clone.BookID = existing.BookID
		clone.CreatedAt = existing.CreatedAt
	}
	clone.UpdatedAt = now
	if err := r.lines.Put(ctx, clone.ID, clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *Repository) DeleteLine(ctx context.Context, cartID, lineID int64) error {
	deleted, err := r.deleteLine(ctx, cartID, lineID)
	if err != nil {
		return err
	}
	if !deleted {
		return ports.ErrLineNotFound
	}
	return nil
}

func (r *Repository) ListLines(ctx context.Context, cartID int64, page pagination.Request) (pagination.Page[*domain.Line], error) {
	return pagination.Slice(r.linesOf(ctx, cartID), page), nil
}

func (r *Repository) AllLines(ctx context.Context, cartID int64) ([]*domain.Line, error) {
	return r.linesOf(ctx, cartID), nil
}

func (r *Repository) DeleteLines(ctx context.Context, cartID int64, lineIDs []int64) (int64, error) {
	var deleted int64
	for _, id := range lineIDs {
		ok, err := r.deleteLine(ctx, cartID, id)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}

func (r *Repository) deleteLine(ctx context.Context, cartID, lineID int64) (bool, error) {
	if _, err := r.GetLine(ctx, cartID, lineID); err != nil {
		return false, nil
	}
	return r.lines.Delete(ctx, lineID)
}

func (r *Repository) linesOf(ctx context.Context, cartID int64) []*domain.Line {
	found := r.lines.Select(ctx, func(line domain.Line) bool { return line.CartID == cartID })
	list := make([]*domain.Line, 0, len(found))
	for i := range found {
		list = append(list, &found[i])
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r *Repository) hold(ctx context.Context, userID int64) {
	key := "cart:" + strconv.FormatInt(userID, 10)
	tx.Hold(ctx, key, r.locks.For(key))
}
