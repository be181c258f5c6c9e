//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/platform/postgres/postgrestest"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

func newBook(t *testing.T, title, price string) *domain.Book {
	t.Helper()
	book, err := domain.NewBook(domain.Details{
		Title:        title,
		Author:       "Iain M. Banks",
		Price:        decimal.RequireFromString(price),
		Availability: 2,
		Category:     "sci-fi",
	})
	require.NoError(t, err)
	return book
}

func TestRepository_SaveAndGetByID(t *testing.T) {
	repo := NewRepository(postgrestest.Start(t))
	ctx := context.Background()

	saved, err := repo.Save(ctx, newBook(t, "Excession", "11.99"))
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Excession", fetched.Title)
	assert.Equal(t, "11.99", fetched.Price.StringFixed(2))
	assert.Equal(t, "SCI-FI", fetched.Category)
}

func TestRepository_UpdateKeepsIdentity(t *testing.T) {
	repo := NewRepository(postgrestest.Start(t))
	ctx := context.Background()

	saved, err := repo.Save(ctx, newBook(t, "Look to Windward", "9.00"))
	require.NoError(t, err)

	saved.Price = decimal.RequireFromString("10.25")
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "10.25", updated.Price.StringFixed(2))
}

func TestRepository_ListPages(t *testing.T) {
	repo := NewRepository(postgrestest.Start(t))
	ctx := context.Background()

	for _, title := range []string{"Consider Phlebas", "Use of Weapons", "Surface Detail"} {
		_, err := repo.Save(ctx, newBook(t, title, "5.00"))
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, pagination.Request{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, "Consider Phlebas", page.Items[0].Title)
}

func TestRepository_Delete(t *testing.T) {
	repo := NewRepository(postgrestest.Start(t))
	ctx := context.Background()

	saved, err := repo.Save(ctx, newBook(t, "Inversions", "6.50"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	_, err = repo.GetByID(ctx, saved.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID), ports.ErrNotFound)
}
