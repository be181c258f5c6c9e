//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/cart/adapters/persistence/postgres"
	cartdomain "github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	catalogpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/events"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/application"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	userpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/persistence/postgres"
	userdomain "github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	"github.com/Apurer/go-gin-bookstore/internal/platform/outbox"
	platformpostgres "github.com/Apurer/go-gin-bookstore/internal/platform/postgres"
	"github.com/Apurer/go-gin-bookstore/internal/platform/postgres/postgrestest"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

func TestRepository_CreateAndTransition(t *testing.T) {
	db := postgrestest.Start(t)
	ctx := context.Background()
	users := userpostgres.NewRepository(db)
	u, err := userdomain.NewUser("alice", "password123")
	require.NoError(t, err)
	user, err := users.Create(ctx, u)
	require.NoError(t, err)

	repo := NewRepository(db)
	order := domain.NewOrder(user.ID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, order.AddLine(1, "Book A", decimal.RequireFromString("10.00"), 2))
	require.NoError(t, order.AddLine(2, "Book B", decimal.RequireFromString("5.50"), 1))

	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	loaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Total.Equal(decimal.RequireFromString("25.50")))
	require.Len(t, loaded.Lines, 2)
	assert.Equal(t, "Book A", loaded.Lines[0].Title)

	require.NoError(t, repo.UpdateStatus(ctx, created.ID, domain.StatusShipped, time.Now()))
	page, err := repo.ListByUser(ctx, user.ID, pagination.Request{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.StatusShipped, page.Items[0].Status)
	assert.Len(t, page.Items[0].Lines, 2)

	_, err = repo.GetByID(ctx, created.ID+1000)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPlaceOrder_CommitsAtomically(t *testing.T) {
	db := postgrestest.Start(t)
	ctx := context.Background()
	users := userpostgres.NewRepository(db)
	books := catalogpostgres.NewRepository(db)
	carts := cartpostgres.NewRepository(db)
	store := outbox.NewPostgresStore(db)
	transactor := platformpostgres.NewTransactor(db)

	u, err := userdomain.NewUser("alice", "password123")
	require.NoError(t, err)
	user, err := users.Create(ctx, u)
	require.NoError(t, err)
	b, err := catalogdomain.NewBook(catalogdomain.Details{Title: "Dune", Author: "Herbert", Price: decimal.RequireFromString("12.30"), Category: "scifi"})
	require.NoError(t, err)
	book, err := books.Save(ctx, b)
	require.NoError(t, err)

	require.NoError(t, transactor.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := carts.EnsureCart(ctx, user.ID)
		if err != nil {
			return err
		}
		line, err := cartdomain.NewLine(cart.ID, book.ID, 3)
		if err != nil {
			return err
		}
		_, err = carts.SaveLine(ctx, line)
		return err
	}))

	svc := application.NewService(application.Dependencies{
		Orders:      NewRepository(db),
		Carts:       carts,
		Books:       books,
		Users:       users,
		Idempotency: NewIdempotencyStore(db),
		Events:      events.NewOutboxRecorder(store),
		Transactor:  transactor,
	})

	order, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: user.ID, IdempotencyKey: "retry-me"})
	require.NoError(t, err)
	assert.Equal(t, "36.90", order.Total.StringFixed(2))

	replayed, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: user.ID, IdempotencyKey: "retry-me"})
	require.NoError(t, err)
	assert.Equal(t, order.ID, replayed.ID)

	cart, err := carts.FindCart(ctx, user.ID)
	require.NoError(t, err)
	lines, err := carts.AllLines(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	pending, err := store.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "orders.order.placed", pending[0].EventType)

	_, err = svc.PlaceOrder(ctx, ports.PlaceOrderInput{UserID: user.ID})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
}
