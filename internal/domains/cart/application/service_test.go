package application

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/adapters/memory"
	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/ports"
	catalogmemory "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	usermemory "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/memory"
	userdomain "github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

type fixture struct {
	svc   *Service
	repo  *memory.Repository
	books *catalogmemory.Repository
	users *usermemory.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:  memory.NewRepository(),
		books: catalogmemory.NewRepository(),
		users: usermemory.NewRepository(),
	}
	f.svc = NewService(f.repo, f.books, f.users, tx.NewMemory())
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

func (f *fixture) book(t *testing.T, title string) int64 {
	t.Helper()
	b, err := catalogdomain.NewBook(catalogdomain.Details{
		Title: title, Author: "Author", Price: decimal.RequireFromString("9.99"), Availability: 5, Category: "misc",
	})
	require.NoError(t, err)
	saved, err := f.books.Save(context.Background(), b)
	require.NoError(t, err)
	return saved.ID
}

func TestAddItem_MergesRepeatedAdds(t *testing.T) {
	f := newFixture(t)
	userID, bookID := f.user(t, "alice"), f.book(t, "X")
	ctx := context.Background()

	first, err := f.svc.AddItem(ctx, userID, bookID, 2)
	require.NoError(t, err)
	second, err := f.svc.AddItem(ctx, userID, bookID, 3)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 5, second.Quantity)

	page, err := f.svc.ListLines(ctx, userID, pagination.Request{Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, 5, page.Items[0].Quantity)
}

func TestAddItem_Failures(t *testing.T) {
	f := newFixture(t)
	userID, bookID := f.user(t, "alice"), f.book(t, "X")
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, userID, bookID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.AddItem(ctx, 999, bookID, 1)
	require.ErrorIs(t, err, ports.ErrUserNotFound)

	_, err = f.svc.AddItem(ctx, userID, 999, 1)
	require.ErrorIs(t, err, ports.ErrItemNotFound)

	_, err = f.repo.FindCart(ctx, userID)
	require.ErrorIs(t, err, ports.ErrCartNotFound, "cart created for a missing book must be rolled back")
}

func TestUpdateLine_OverwritesOrRemoves(t *testing.T) {
	f := newFixture(t)
	userID, bookID := f.user(t, "alice"), f.book(t, "X")
	ctx := context.Background()
	line, err := f.svc.AddItem(ctx, userID, bookID, 2)
	require.NoError(t, err)

	change, err := f.svc.UpdateLine(ctx, userID, line.ID, 7)
	require.NoError(t, err)
	require.False(t, change.Removed)
	require.Equal(t, 7, change.Line.Quantity)

	_, err = f.svc.UpdateLine(ctx, userID, line.ID, -1)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	change, err = f.svc.UpdateLine(ctx, userID, line.ID, 0)
	require.NoError(t, err)
	require.True(t, change.Removed)

	page, err := f.svc.ListLines(ctx, userID, pagination.Request{})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Zero(t, page.TotalItems)

	_, err = f.svc.GetLine(ctx, userID, line.ID)
	require.ErrorIs(t, err, ports.ErrLineNotFound)
}

func TestLineOwnership(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	bookID := f.book(t, "X")
	ctx := context.Background()

	line, err := f.svc.AddItem(ctx, alice, bookID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, bob, bookID, 1)
	require.NoError(t, err)

	_, err = f.svc.GetLine(ctx, bob, line.ID)
	require.ErrorIs(t, err, ports.ErrLineNotFound)
	_, err = f.svc.UpdateLine(ctx, bob, line.ID, 3)
	require.ErrorIs(t, err, ports.ErrLineNotFound)
	require.ErrorIs(t, f.svc.RemoveLine(ctx, bob, line.ID), ports.ErrLineNotFound)

	owned, err := f.svc.GetLine(ctx, alice, line.ID)
	require.NoError(t, err)
	require.Equal(t, 1, owned.Quantity)

	require.NoError(t, f.svc.RemoveLine(ctx, alice, line.ID))
	require.ErrorIs(t, f.svc.RemoveLine(ctx, alice, line.ID), ports.ErrLineNotFound)
}

func TestListLines_NoCartIsEmptyPage(t *testing.T) {
	f := newFixture(t)
	userID := f.user(t, "alice")

	page, err := f.svc.ListLines(context.Background(), userID, pagination.Request{Page: 0, Size: 5})
	require.NoError(t, err)
	require.NotNil(t, page.Items)
	require.Empty(t, page.Items)
	require.Equal(t, 5, page.Size)
}

func TestUpdateLine_WithoutCart(t *testing.T) {
	f := newFixture(t)
	userID := f.user(t, "alice")

	_, err := f.svc.UpdateLine(context.Background(), userID, 1, 2)
	require.ErrorIs(t, err, ports.ErrLineNotFound)
}

func TestAddItem_ConcurrentAddsKeepOneLine(t *testing.T) {
	f := newFixture(t)
	userID, bookID := f.user(t, "alice"), f.book(t, "X")
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddItem(ctx, userID, bookID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := f.repo.FindCart(ctx, userID)
	require.NoError(t, err)
	lines, err := f.repo.AllLines(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, workers, lines[0].Quantity)
}
