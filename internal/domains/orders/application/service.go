package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cartports "github.com/Apurer/go-gin-bookstore/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

// Dependencies are the collaborators of the order service. Events and
// Transactor are optional.
type Dependencies struct {
	Orders      ports.Repository
	Carts       ports.CartStore
	Books       ports.BookFinder
	Users       ports.UserFinder
	Idempotency ports.IdempotencyStore
	Events      ports.EventRecorder
	Transactor  tx.Transactor
}

// Service turns carts into orders and moves orders through their lifecycle.
type Service struct {
	repo        ports.Repository
	carts       ports.CartStore
	books       ports.BookFinder
	users       ports.UserFinder
	idempotency ports.IdempotencyStore
	events      ports.EventRecorder
	tx          tx.Transactor
	now         func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(deps Dependencies, opts ...Option) *Service {
	s := &Service{
		repo:        deps.Orders,
		carts:       deps.Carts,
		books:       deps.Books,
		users:       deps.Users,
		idempotency: deps.Idempotency,
		events:      deps.Events,
		tx:          deps.Transactor,
		now:         time.Now,
	}
	if s.events == nil {
		s.events = ports.DiscardEvents
	}
	if s.tx == nil {
		s.tx = tx.Passthrough
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder converts every line of the caller's cart into a pending order
// and empties the cart, all in one unit of work. The cart stays locked from
// the first read to the commit, so concurrent cart edits either land before
// the snapshot or after the cart was cleared.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return nil, mapLookupError(err)
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var requestHash string
	if key != "" {
		if s.idempotency == nil {
			return nil, errors.New("idempotency store not configured")
		}
		hash, err := FingerprintPlaceOrder(input)
		if err != nil {
			return nil, err
		}
		requestHash = hash
	}

	var placed *domain.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := s.carts.LockCart(ctx, input.UserID)
		if err != nil && !errors.Is(err, cartports.ErrCartNotFound) {
			return err
		}
		if key != "" {
			replayed, err := s.replay(ctx, key, requestHash)
			if err != nil {
				return err
			}
			if replayed != nil {
				placed = replayed
				return nil
			}
		}
		if cart == nil {
			return domain.ErrEmptyCart
		}
		lines, err := s.carts.AllLines(ctx, cart.ID)
		if err != nil {
			return err
		}
		order := domain.NewOrder(input.UserID, s.now())
		lineIDs := make([]int64, 0, len(lines))
		for _, line := range lines {
			book, err := s.books.GetByID(ctx, line.BookID)
			if err != nil {
				return mapLookupError(err)
			}
			if err := order.AddLine(book.ID, book.Title, book.Price, line.Quantity); err != nil {
				return mapError(err)
			}
			lineIDs = append(lineIDs, line.ID)
		}
		if err := order.Seal(); err != nil {
			return err
		}

		removed, err := s.carts.DeleteLines(ctx, cart.ID, lineIDs)
		if err != nil {
			return err
		}
		if removed != int64(len(lineIDs)) {
			return fmt.Errorf("%w: cleared %d of %d lines", ports.ErrCartChanged, removed, len(lineIDs))
		}
		created, err := s.repo.Create(ctx, order)
		if err != nil {
			return err
		}
		if key != "" {
			if _, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
				Key:         key,
				UserID:      input.UserID,
				RequestHash: requestHash,
				OrderID:     created.ID,
			}); err != nil {
				return err
			}
		}
		if err := s.events.Record(ctx, domain.NewOrderPlaced(created)); err != nil {
			return err
		}
		placed = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *Service) replay(ctx context.Context, key, requestHash string) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil || record == nil {
		return nil, err
	}
	if record.RequestHash != requestHash {
		return nil, ports.ErrIdempotencyConflict
	}
	return s.repo.GetByID(ctx, record.OrderID)
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// GetOrderForUser hides orders of other users behind ErrNotFound.
func (s *Service) GetOrderForUser(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ports.ErrNotFound
	}
	return order, nil
}

func (s *Service) ListOrdersForUser(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Order], error) {
	return s.repo.ListByUser(ctx, userID, page)
}

func (s *Service) ListAllOrders(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Order], error) {
	return s.repo.List(ctx, page)
}

// UpdateStatus applies a lifecycle transition under a row lock.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, raw string) (*domain.Order, error) {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, mapError(err)
	}
	var updated *domain.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		from := order.Status
		if err := order.TransitionTo(status, s.now()); err != nil {
			return err
		}
		if err := s.repo.UpdateStatus(ctx, order.ID, order.Status, order.UpdatedAt); err != nil {
			return err
		}
		if err := s.events.Record(ctx, domain.OrderStatusChanged{
			BaseEvent:  domain.BaseEvent{OrderID: order.ID, Timestamp: order.UpdatedAt},
			UserID:     order.UserID,
			FromStatus: from,
			ToStatus:   order.Status,
		}); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

var _ ports.Service = (*Service)(nil)
