//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/ports"
	userpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/persistence/postgres"
	userdomain "github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	"github.com/Apurer/go-gin-bookstore/internal/platform/postgres/postgrestest"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

func TestRepository_Lifecycle(t *testing.T) {
	db := postgrestest.Start(t)
	ctx := context.Background()
	u, err := userdomain.NewUser("alice", "password123")
	require.NoError(t, err)
	user, err := userpostgres.NewRepository(db).Create(ctx, u)
	require.NoError(t, err)
	b, err := catalogdomain.NewBook(catalogdomain.Details{Title: "Dune", Author: "Herbert", Price: decimal.NewFromInt(9), Category: "scifi"})
	require.NoError(t, err)
	book, err := catalogpostgres.NewRepository(db).Save(ctx, b)
	require.NoError(t, err)

	repo := NewRepository(db)
	_, err = repo.Add(ctx, user.ID, book.ID)
	require.NoError(t, err)
	_, err = repo.Add(ctx, user.ID, book.ID)
	require.ErrorIs(t, err, ports.ErrAlreadyFavourite)

	page, err := repo.List(ctx, user.ID, pagination.Request{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.TotalItems)

	require.NoError(t, repo.Remove(ctx, user.ID, book.ID))
	require.ErrorIs(t, repo.Remove(ctx, user.ID, book.ID), ports.ErrNotFound)
}
