package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

func details(title, price string) domain.Details {
	return domain.Details{
		Title:        title,
		Author:       "Ursula K. Le Guin",
		Price:        decimal.RequireFromString(price),
		Availability: 4,
		Category:     " fantasy ",
	}
}

func TestCreateBook_NormalizesAndPersists(t *testing.T) {
	svc := NewService(memory.NewRepository())

	book, err := svc.CreateBook(context.Background(), details("  A Wizard of Earthsea ", "10.00"))
	require.NoError(t, err)
	require.NotZero(t, book.ID)
	require.Equal(t, "A Wizard of Earthsea", book.Title)
	require.Equal(t, "FANTASY", book.Category)

	loaded, err := svc.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	require.True(t, loaded.Price.Equal(decimal.RequireFromString("10")))
}

func TestCreateBook_RejectsInvalidDetails(t *testing.T) {
	svc := NewService(memory.NewRepository())

	cases := map[string]struct {
		details domain.Details
		want    error
	}{
		"missing title":     {details: details(" ", "1.00"), want: domain.ErrEmptyTitle},
		"negative price":    {details: details("T", "-1.00"), want: domain.ErrNegativePrice},
		"too many decimals": {details: details("T", "1.005"), want: domain.ErrPricePrecision},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateBook(context.Background(), tc.details)
			require.ErrorIs(t, err, ErrInvalidInput)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateBook_ReplacesAttributes(t *testing.T) {
	svc := NewService(memory.NewRepository())
	book, err := svc.CreateBook(context.Background(), details("The Dispossessed", "12.00"))
	require.NoError(t, err)

	updated, err := svc.UpdateBook(context.Background(), book.ID, details("The Dispossessed", "14.50"))
	require.NoError(t, err)
	require.Equal(t, "14.50", updated.Price.StringFixed(2))
	require.Equal(t, book.CreatedAt, updated.CreatedAt)

	_, err = svc.UpdateBook(context.Background(), 999, details("Missing", "1.00"))
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListBooks_PagesByID(t *testing.T) {
	svc := NewService(memory.NewRepository())
	for _, title := range []string{"A", "B", "C"} {
		_, err := svc.CreateBook(context.Background(), details(title, "1.00"))
		require.NoError(t, err)
	}

	page, err := svc.ListBooks(context.Background(), pagination.Request{Page: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "C", page.Items[0].Title)
	require.Equal(t, int64(3), page.TotalItems)
	require.Equal(t, 2, page.TotalPages)
}

func TestDeleteBook_NotFound(t *testing.T) {
	svc := NewService(memory.NewRepository())
	require.ErrorIs(t, svc.DeleteBook(context.Background(), 42), ports.ErrNotFound)
}
