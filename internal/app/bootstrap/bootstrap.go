// Package bootstrap assembles the bookstore services for the cmd processes.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-bookstore/internal/app/config"
	cartmemory "github.com/Apurer/go-gin-bookstore/internal/domains/cart/adapters/memory"
	cartobs "github.com/Apurer/go-gin-bookstore/internal/domains/cart/adapters/observability"
	cartpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/cart/adapters/persistence/postgres"
	cartapp "github.com/Apurer/go-gin-bookstore/internal/domains/cart/application"
	cartports "github.com/Apurer/go-gin-bookstore/internal/domains/cart/ports"
	catalogcache "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/cache"
	catalogmemory "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	favouritememory "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/adapters/memory"
	favouriteobs "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/adapters/observability"
	favouritepostgres "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/adapters/persistence/postgres"
	favouriteapp "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/application"
	favouriteports "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/ports"
	orderevents "github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/events"
	ordermemory "github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/Apurer/go-gin-bookstore/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	usermemory "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/go-gin-bookstore/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
	"github.com/Apurer/go-gin-bookstore/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-bookstore/internal/platform/observability"
	"github.com/Apurer/go-gin-bookstore/internal/platform/outbox"
	platformpostgres "github.com/Apurer/go-gin-bookstore/internal/platform/postgres"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

// Services are the decorated use case entry points of every bounded context.
type Services struct {
	Users      userports.Service
	Catalog    catalogports.Service
	Cart       cartports.Service
	Orders     orderports.Service
	Favourites favouriteports.Service

	// Outbox holds events written by order transactions.
	Outbox outbox.Store
	// Transactor is the unit of work shared by all services.
	Transactor tx.Transactor
	// Persistent is false when memory adapters back the services.
	Persistent bool
}

type repositories struct {
	books       catalogports.Repository
	users       userports.Repository
	sessions    userports.SessionStore
	carts       cartports.Repository
	orders      orderports.Repository
	idempotency orderports.IdempotencyStore
	favourites  favouriteports.Repository
	outbox      outbox.Store
	transactor  tx.Transactor
}

// Build wires repositories and services for cfg. Postgres is used when a DSN
// is configured and reachable; otherwise every context falls back to memory.
// The returned cleanup closes every connection opened here.
func Build(ctx context.Context, cfg config.Config, instruments *platformobservability.Instruments) (*Services, func(), error) {
	var logger *slog.Logger
	if instruments != nil {
		logger = instruments.Logger
	}
	if logger == nil {
		logger = slog.Default()
	}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	repos := memoryRepositories()
	persistent := false
	if db, closeDB := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger); db != nil {
		cleanups = append(cleanups, closeDB)
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		repos = postgresRepositories(db)
		persistent = true
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
			_ = client.Close()
		} else {
			cleanups = append(cleanups, func() { _ = client.Close() })
			repos.books = catalogcache.NewRepository(repos.books, client)
			logger.Info("catalog cache enabled", slog.String("addr", cfg.RedisAddr))
		}
	}

	services := &Services{
		Users: userobs.New(
			userapp.NewService(repos.users, repos.sessions,
				userapp.WithSessionTTL(cfg.SessionTTL),
				userapp.WithTransactor(repos.transactor),
				userapp.WithAccountData(repos.accountData()...),
			),
			userobs.WithLogger(logger),
			userobs.WithTracer(instruments.Tracer("internal.users.application")),
			userobs.WithMeter(instruments.Meter("internal.users.application")),
		),
		Catalog: catalogobs.New(
			catalogapp.NewService(repos.books),
			catalogobs.WithLogger(logger),
			catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
			catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
		),
		Cart: cartobs.New(
			cartapp.NewService(repos.carts, repos.books, repos.users, repos.transactor),
			cartobs.WithLogger(logger),
			cartobs.WithTracer(instruments.Tracer("internal.cart.application")),
			cartobs.WithMeter(instruments.Meter("internal.cart.application")),
		),
		Orders: orderobs.New(
			orderapp.NewService(orderapp.Dependencies{
				Orders:      repos.orders,
				Carts:       repos.carts,
				Books:       repos.books,
				Users:       repos.users,
				Idempotency: repos.idempotency,
				Events:      orderevents.NewOutboxRecorder(repos.outbox),
				Transactor:  repos.transactor,
			}),
			orderobs.WithLogger(logger),
			orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
			orderobs.WithMeter(instruments.Meter("internal.orders.application")),
		),
		Favourites: favouriteobs.New(
			favouriteapp.NewService(repos.favourites, repos.books, repos.users),
			favouriteobs.WithLogger(logger),
			favouriteobs.WithTracer(instruments.Tracer("internal.favourites.application")),
		),
		Outbox:     repos.outbox,
		Transactor: repos.transactor,
		Persistent: persistent,
	}
	return services, cleanup, nil
}

// EnsureAdmin creates or promotes the configured bootstrap administrator.
func EnsureAdmin(ctx context.Context, cfg config.Config, users userports.Service, logger *slog.Logger) error {
	if cfg.BootstrapAdminUsername == "" {
		return nil
	}
	admin, err := users.EnsureAdmin(ctx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin %q: %w", cfg.BootstrapAdminUsername, err)
	}
	logger.Info("bootstrap admin ready", slog.Int64("user_id", admin.ID), slog.String("username", admin.Username))
	return nil
}

// ErrNotPersistent is returned by processes that only make sense against a
// shared database.
var ErrNotPersistent = errors.New("postgres is required")

// accountData lists what DeleteAccount removes besides the user and its
// sessions. Orders are kept.
func (r repositories) accountData() []userports.AccountData {
	return []userports.AccountData{
		userports.AccountDataFunc(r.carts.DeleteCart),
		userports.AccountDataFunc(func(ctx context.Context, userID int64) error {
			_, err := r.favourites.RemoveAllForUser(ctx, userID)
			return err
		}),
	}
}

func memoryRepositories() repositories {
	return repositories{
		books:       catalogmemory.NewRepository(),
		users:       usermemory.NewRepository(),
		sessions:    usermemory.NewSessionStore(),
		carts:       cartmemory.NewRepository(),
		orders:      ordermemory.NewRepository(),
		idempotency: ordermemory.NewIdempotencyStore(),
		favourites:  favouritememory.NewRepository(),
		outbox:      outbox.NewMemoryStore(),
		transactor:  tx.NewMemory(),
	}
}

func postgresRepositories(db *gorm.DB) repositories {
	return repositories{
		books:       catalogpostgres.NewRepository(db),
		users:       userpostgres.NewRepository(db),
		sessions:    userpostgres.NewSessionStore(db),
		carts:       cartpostgres.NewRepository(db),
		orders:      orderpostgres.NewRepository(db),
		idempotency: orderpostgres.NewIdempotencyStore(db),
		favourites:  favouritepostgres.NewRepository(db),
		outbox:      outbox.NewPostgresStore(db),
		transactor:  platformpostgres.NewTransactor(db),
	}
}
