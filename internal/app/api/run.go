package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	"golang.org/x/sync/errgroup"

	bookstoreserver "github.com/Apurer/go-gin-bookstore/go"
	"github.com/Apurer/go-gin-bookstore/internal/app/bootstrap"
	"github.com/Apurer/go-gin-bookstore/internal/app/config"
	orderworkflows "github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/workflows"
	orderports "github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	userports "github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
	platformobservability "github.com/Apurer/go-gin-bookstore/internal/platform/observability"
)

const serviceName = "bookstore-api"

// Run boots the bookstore HTTP API with observability, repositories, and
// workflows wired. It returns when ctx is cancelled or a component fails.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	services, cleanup, err := bootstrap.Build(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := bootstrap.EnsureAdmin(ctx, cfg, services.Users, logger); err != nil {
		return err
	}

	placement, closePlacement := choosePlacement(services, func() (client.Client, error) {
		return bootstrap.DialTemporal(cfg, instruments)
	}, logger)
	defer closePlacement()

	router := NewRouter(cfg, services, placement, instruments)
	server := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Bookstore API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Bookstore API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if relay, closeRelay := bootstrap.NewRelay(cfg, services, logger); relay != nil {
		defer closeRelay()
		g.Go(func() error { return ignoreCancel(relay.Run(gctx)) })
	}
	if cfg.SessionPurgeInterval > 0 {
		g.Go(func() error {
			purgeSessions(gctx, services.Users, cfg.SessionPurgeInterval, logger)
			return nil
		})
	}
	return g.Wait()
}

// NewRouter builds the gin engine serving the bookstore API and /metrics.
func NewRouter(cfg config.Config, services *bootstrap.Services, placement orderports.PlacementOrchestrator, instruments *platformobservability.Instruments) *gin.Engine {
	paging := bookstoreserver.Paging{DefaultSize: cfg.DefaultPageSize, MaxSize: cfg.MaxPageSize}
	handlers := bookstoreserver.ApiHandleFunctions{
		Authenticator: services.Users,
		AuthAPI:       bookstoreserver.NewAuthAPI(services.Users),
		UserAPI:       bookstoreserver.NewUserAPI(services.Users, paging),
		BookAPI:       bookstoreserver.NewBookAPI(services.Catalog, paging),
		CartAPI:       bookstoreserver.NewCartAPI(services.Cart, paging),
		OrderAPI:      bookstoreserver.NewOrderAPI(services.Orders, placement, paging),
		FavouriteAPI:  bookstoreserver.NewFavouriteAPI(services.Favourites, paging),
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	if instruments != nil && instruments.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(instruments.MetricsHandler))
	}
	return bookstoreserver.NewRouterWithGinEngine(engine, handlers)
}

// choosePlacement picks how the API places orders. The Temporal worker builds
// its own repositories, so workflows are only used when both processes share
// Postgres; otherwise orders are placed inline against the API's memory store.
func choosePlacement(services *bootstrap.Services, dial func() (client.Client, error), logger *slog.Logger) (orderports.PlacementOrchestrator, func()) {
	inline := orderworkflows.NewInlineOrderWorkflows(services.Orders)
	if !services.Persistent {
		logger.Info("in-memory repositories, placing orders inline")
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled")
	return orderworkflows.NewTemporalOrderWorkflows(temporalClient), temporalClient.Close
}

// purgeSessions removes expired sessions every interval until ctx ends.
func purgeSessions(ctx context.Context, users userports.Service, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := users.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("expired sessions purged", slog.Int64("removed", removed))
		}
	}
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
