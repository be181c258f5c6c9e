package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmemory "github.com/Apurer/go-gin-bookstore/internal/domains/cart/adapters/memory"
	cartapp "github.com/Apurer/go-gin-bookstore/internal/domains/cart/application"
	catalogmemory "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/events"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	usermemory "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/memory"
	userdomain "github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	"github.com/Apurer/go-gin-bookstore/internal/platform/outbox"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

var placedAt = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	cart   *cartapp.Service
	orders *memory.Repository
	carts  *cartmemory.Repository
	books  *catalogmemory.Repository
	users  *usermemory.Repository
	outbox *outbox.MemoryStore
}

type fixtureOption func(*Dependencies)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	f := &fixture{
		orders: memory.NewRepository(),
		carts:  cartmemory.NewRepository(),
		books:  catalogmemory.NewRepository(),
		users:  usermemory.NewRepository(),
		outbox: outbox.NewMemoryStore(),
	}
	transactor := tx.NewMemory()
	deps := Dependencies{
		Orders:      f.orders,
		Carts:       f.carts,
		Books:       f.books,
		Users:       f.users,
		Idempotency: memory.NewIdempotencyStore(),
		Events:      events.NewOutboxRecorder(f.outbox),
		Transactor:  transactor,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = NewService(deps, WithClock(func() time.Time { return placedAt }))
	f.cart = cartapp.NewService(f.carts, f.books, f.users, transactor)
	return f
}

func (f *fixture) user(t *testing.T, name string) int64 {
	t.Helper()
	u, err := userdomain.NewUser(name, "password123")
	require.NoError(t, err)
	saved, err := f.users.Create(context.Background(), u)
	require.NoError(t, err)
	return saved.ID
}

func (f *fixture) book(t *testing.T, title, price string) int64 {
	t.Helper()
	b, err := catalogdomain.NewBook(catalogdomain.Details{
		Title: title, Author: "Author", Price: decimal.RequireFromString(price), Availability: 10, Category: "fiction",
	})
	require.NoError(t, err)
	saved, err := f.books.Save(context.Background(), b)
	require.NoError(t, err)
	return saved.ID
}

func (f *fixture) add(t *testing.T, userID, bookID int64, qty int) int64 {
	t.Helper()
	line, err := f.cart.AddItem(context.Background(), userID, bookID, qty)
	require.NoError(t, err)
	return line.ID
}

func (f *fixture) cartSize(t *testing.T, userID int64) int64 {
	t.Helper()
	page, err := f.cart.ListLines(context.Background(), userID, pagination.Request{Size: pagination.MaxSize})
	require.NoError(t, err)
	return page.TotalItems
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	page, err := f.svc.ListAllOrders(context.Background(), pagination.Request{})
	require.NoError(t, err)
	return page.TotalItems
}

func TestPlaceOrder_SnapshotsCartAndClearsIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")
	bookA := f.book(t, "Book A", "10.00")
	bookB := f.book(t, "Book B", "5.50")
	f.add(t, userID, bookA, 2)
	f.add(t, userID, bookB, 1)

	order, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: userID})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "25.50", order.Total.StringFixed(2))
	assert.Equal(t, placedAt, order.CreatedAt)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, bookA, order.Lines[0].BookID)
	assert.Equal(t, "Book A", order.Lines[0].Title)
	assert.Equal(t, "10.00", order.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, 2, order.Lines[0].Quantity)
	assert.Equal(t, bookB, order.Lines[1].BookID)
	assert.Equal(t, 1, order.Lines[1].Quantity)
	assert.Zero(t, f.cartSize(t, userID))

	_, err = f.carts.FindCart(ctx, userID)
	require.NoError(t, err, "cart entity is kept for reuse")

	msgs := f.outbox.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "orders.order.placed", msgs[0].EventType)
	assert.Equal(t, fmt.Sprint(order.ID), msgs[0].AggregateID)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")

	_, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: userID})
	require.ErrorIs(t, err, domain.ErrEmptyCart)

	lineID := f.add(t, userID, f.book(t, "Book A", "10.00"), 1)
	require.NoError(t, f.cart.RemoveLine(ctx, userID, lineID))

	_, err = f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: userID})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Zero(t, f.orderCount(t))
	assert.Empty(t, f.outbox.Messages())
}

func TestPlaceOrder_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: 404})
	require.ErrorIs(t, err, ports.ErrUserNotFound)
}

func TestPlaceOrder_PricesAreFrozen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")
	bookA := f.book(t, "Book A", "10.00")
	f.add(t, userID, bookA, 1)

	order, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: userID})
	require.NoError(t, err)

	book, err := f.books.GetByID(ctx, bookA)
	require.NoError(t, err)
	require.NoError(t, book.Apply(catalogdomain.Details{
		Title: "Book A (2nd ed.)", Author: book.Author, Price: decimal.RequireFromString("42.00"), Category: book.Category,
	}))
	_, err = f.books.Save(ctx, book)
	require.NoError(t, err)

	reloaded, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", reloaded.Total.StringFixed(2))
	assert.Equal(t, "10.00", reloaded.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "Book A", reloaded.Lines[0].Title)
}

func TestPlaceOrder_DrainsCartLargerThanAPage(t *testing.T) {
	f := newFixture(t)
	userID := f.user(t, "alice")
	lines := pagination.MaxSize + 25
	for i := 0; i < lines; i++ {
		f.add(t, userID, f.book(t, fmt.Sprintf("Book %d", i), "1.25"), 2)
	}

	order, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, order.Lines, lines)
	assert.Equal(t, decimal.NewFromFloat(2.5).Mul(decimal.NewFromInt(int64(lines))).StringFixed(2), order.Total.StringFixed(2))
	assert.Zero(t, f.cartSize(t, userID))
}

func TestPlaceOrder_MissingBookRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")
	f.add(t, userID, f.book(t, "Book A", "10.00"), 1)
	gone := f.book(t, "Book B", "3.00")
	f.add(t, userID, gone, 1)
	require.NoError(t, f.books.Delete(ctx, gone))

	_, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: userID})
	require.ErrorIs(t, err, ports.ErrItemNotFound)
	assert.EqualValues(t, 2, f.cartSize(t, userID))
	assert.Zero(t, f.orderCount(t))
}

type failingOrders struct {
	*memory.Repository
}

func (failingOrders) Create(context.Context, *domain.Order) (*domain.Order, error) {
	return nil, errors.New("disk full")
}

func TestPlaceOrder_FailureAfterClearingCartRestoresIt(t *testing.T) {
	f := newFixture(t, func(d *Dependencies) { d.Orders = failingOrders{Repository: d.Orders.(*memory.Repository)} })
	userID := f.user(t, "alice")
	f.add(t, userID, f.book(t, "Book A", "10.00"), 3)

	_, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: userID})
	require.EqualError(t, err, "disk full")
	assert.EqualValues(t, 1, f.cartSize(t, userID))
	assert.Zero(t, f.orderCount(t))
	assert.Empty(t, f.outbox.Messages())
}

func TestPlaceOrder_EventFailureRollsBackOrder(t *testing.T) {
	f := newFixture(t, func(d *Dependencies) {
		d.Events = ports.EventRecorderFunc(func(context.Context, ...domain.Event) error { return errors.New("outbox unavailable") })
	})
	userID := f.user(t, "alice")
	f.add(t, userID, f.book(t, "Book A", "10.00"), 1)

	_, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: userID})
	require.Error(t, err)
	assert.Zero(t, f.orderCount(t))
	assert.EqualValues(t, 1, f.cartSize(t, userID))
}

func TestPlaceOrder_IdempotencyKeyReplaysOriginalOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.add(t, alice, f.book(t, "Book A", "10.00"), 1)

	first, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: alice, IdempotencyKey: "k-1"})
	require.NoError(t, err)

	again, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: alice, IdempotencyKey: "k-1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.EqualValues(t, 1, f.orderCount(t))
	assert.Len(t, f.outbox.Messages(), 1)

	_, err = f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: bob, IdempotencyKey: "k-1"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	_, err = f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: alice, IdempotencyKey: "k-2"})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestGetOrderForUser_HidesOtherUsersOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.add(t, alice, f.book(t, "Book A", "10.00"), 1)
	order, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: alice})
	require.NoError(t, err)

	own, err := f.svc.GetOrderForUser(ctx, order.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, order.ID, own.ID)

	_, err = f.svc.GetOrderForUser(ctx, order.ID, bob)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = f.svc.GetOrderForUser(ctx, order.ID+100, alice)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListOrders_ScopesByUserNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	book := f.book(t, "Book A", "10.00")
	var aliceOrders []int64
	for i := 0; i < 3; i++ {
		f.add(t, alice, book, 1)
		order, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: alice})
		require.NoError(t, err)
		aliceOrders = append(aliceOrders, order.ID)
	}
	f.add(t, bob, book, 1)
	_, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: bob})
	require.NoError(t, err)

	page, err := f.svc.ListOrdersForUser(ctx, alice, pagination.Request{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, aliceOrders[2], page.Items[0].ID)

	all, err := f.svc.ListAllOrders(ctx, pagination.Request{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.TotalItems)
}

func TestUpdateStatus_FollowsLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")
	f.add(t, userID, f.book(t, "Book A", "10.00"), 1)
	order, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: userID})
	require.NoError(t, err)

	shipped, err := f.svc.UpdateStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, shipped.Status)

	_, err = f.svc.UpdateStatus(ctx, order.ID, "PENDING")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	delivered, err := f.svc.UpdateStatus(ctx, order.ID, "DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, delivered.Status)
	assert.Equal(t, "10.00", delivered.Total.StringFixed(2))

	for _, next := range []string{"CANCELLED", "SHIPPED", "DELIVERED"} {
		_, err = f.svc.UpdateStatus(ctx, order.ID, next)
		require.ErrorIs(t, err, domain.ErrInvalidTransition, next)
	}

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, stored.Status)

	msgs := f.outbox.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "orders.order.status_changed", msgs[2].EventType)
}

func TestUpdateStatus_RejectsUnknownStatusAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, 1, "LOST")
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, 99, "SHIPPED")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPlaceOrder_MatchesReplayedCartOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		ctx := context.Background()
		userID := f.user(t, "alice")
		prices := map[int64]decimal.Decimal{}
		var bookIDs []int64
		for i := 0; i < 6; i++ {
			price := decimal.New(int64(rng.Intn(5000)), -2)
			id := f.book(t, fmt.Sprintf("Book %d", i), price.StringFixed(2))
			prices[id] = price
			bookIDs = append(bookIDs, id)
		}

		want := map[int64]int{}
		lineOf := map[int64]int64{}
		for step := 0; step < 40; step++ {
			bookID := bookIDs[rng.Intn(len(bookIDs))]
			switch rng.Intn(3) {
			case 0:
				qty := rng.Intn(3) + 1
				lineOf[bookID] = f.add(t, userID, bookID, qty)
				want[bookID] += qty
			case 1:
				lineID, ok := lineOf[bookID]
				if !ok {
					continue
				}
				qty := rng.Intn(4)
				_, err := f.cart.UpdateLine(ctx, userID, lineID, qty)
				require.NoError(t, err)
				if qty == 0 {
					delete(want, bookID)
					delete(lineOf, bookID)
				} else {
					want[bookID] = qty
				}
			default:
				lineID, ok := lineOf[bookID]
				if !ok {
					continue
				}
				require.NoError(t, f.cart.RemoveLine(ctx, userID, lineID))
				delete(want, bookID)
				delete(lineOf, bookID)
			}
		}

		order, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: userID})
		if len(want) == 0 {
			require.ErrorIs(t, err, domain.ErrEmptyCart)
			continue
		}
		require.NoError(t, err)

		total := decimal.Zero
		for bookID, qty := range want {
			total = total.Add(prices[bookID].Mul(decimal.NewFromInt(int64(qty))))
		}
		require.Len(t, order.Lines, len(want), "round %d", round)
		require.True(t, total.Equal(order.Total), "round %d: want %s got %s", round, total, order.Total)
		for _, line := range order.Lines {
			require.Equal(t, want[line.BookID], line.Quantity)
		}
	}
}

func TestPlaceOrder_ConcurrentAddsAreEitherOrderedOrLeftInCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, "alice")
	price := decimal.RequireFromString("2.00")
	bookID := f.book(t, "Book A", price.StringFixed(2))

	const adders, addsEach = 8, 25
	var wg sync.WaitGroup
	for i := 0; i < adders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < addsEach; j++ {
				_, err := f.cart.AddItem(ctx, userID, bookID, 1)
				assert.NoError(t, err)
			}
		}()
	}
	done := make(chan struct{})
	var placeErrs []error
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			if _, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: userID}); err != nil && !errors.Is(err, domain.ErrEmptyCart) {
				placeErrs = append(placeErrs, err)
			}
		}
	}()
	wg.Wait()
	<-done
	require.Empty(t, placeErrs)

	all, err := f.svc.ListAllOrders(ctx, pagination.Request{Size: pagination.MaxSize})
	require.NoError(t, err)
	ordered := 0
	for _, order := range all.Items {
		require.Len(t, order.Lines, 1)
		require.True(t, order.Total.Equal(price.Mul(decimal.NewFromInt(int64(order.Lines[0].Quantity)))))
		ordered += order.Lines[0].Quantity
	}

	remaining := 0
	lines, err := f.cart.ListLines(ctx, userID, pagination.Request{})
	require.NoError(t, err)
	for _, line := range lines.Items {
		remaining += line.Quantity
	}
	assert.Equal(t, adders*addsEach, ordered+remaining)
}

func TestPlaceOrder_ReadersNeverSeeAPlacementThatRollsBack(t *testing.T) {
	type snapshot struct {
		orders int64
		lines  int
		err    error
	}
	var f *fixture
	var userID int64
	var observed snapshot
	f = newFixture(t, func(d *Dependencies) {
		d.Events = ports.EventRecorderFunc(func(context.Context, ...domain.Event) error {
			seen := make(chan snapshot, 1)
			go func() {
				ctx := context.Background()
				page, err := f.orders.List(ctx, pagination.Request{})
				if err != nil {
					seen <- snapshot{err: err}
					return
				}
				cart, err := f.carts.FindCart(ctx, userID)
				if err != nil {
					seen <- snapshot{err: err}
					return
				}
				lines, err := f.carts.AllLines(ctx, cart.ID)
				seen <- snapshot{orders: page.TotalItems, lines: len(lines), err: err}
			}()
			observed = <-seen
			return errors.New("broker unavailable")
		})
	})
	userID = f.user(t, "alice")
	f.add(t, userID, f.book(t, "Book A", "10.00"), 1)
	f.add(t, userID, f.book(t, "Book B", "4.00"), 2)

	_, err := f.svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{UserID: userID})
	require.Error(t, err)

	require.NoError(t, observed.err)
	assert.Zero(t, observed.orders, "order was visible before commit")
	assert.Equal(t, 2, observed.lines, "cleared lines were visible before commit")
	assert.Zero(t, f.orderCount(t))
	assert.EqualValues(t, 2, f.cartSize(t, userID))
	assert.Empty(t, f.outbox.Messages())
}

func TestPlaceOrder_UncommittedIdempotencyKeyIsTaken(t *testing.T) {
	ctx := context.Background()
	var f *fixture
	var bob int64
	competing := make(chan error, 1)
	f = newFixture(t, func(d *Dependencies) {
		d.Events = ports.EventRecorderFunc(func(context.Context, ...domain.Event) error {
			done := make(chan error, 1)
			go func() {
				_, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: bob, IdempotencyKey: "k-1"})
				done <- err
			}()
			competing <- <-done
			return errors.New("broker unavailable")
		})
	})
	alice := f.user(t, "alice")
	bob = f.user(t, "bob")
	book := f.book(t, "Book A", "10.00")
	f.add(t, alice, book, 1)
	f.add(t, bob, book, 1)

	_, err := f.svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: alice, IdempotencyKey: "k-1"})
	require.Error(t, err)
	require.ErrorIs(t, <-competing, ports.ErrIdempotencyConflict)

	assert.Zero(t, f.orderCount(t))
	assert.EqualValues(t, 1, f.cartSize(t, alice))
	assert.EqualValues(t, 1, f.cartSize(t, bob))
}
