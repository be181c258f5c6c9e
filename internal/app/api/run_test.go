package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-bookstore/internal/app/bootstrap"
	"github.com/Apurer/go-gin-bookstore/internal/app/config"
	orderworkflows "github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/workflows"
	platformobservability "github.com/Apurer/go-gin-bookstore/internal/platform/observability"
)

func TestRouterServesMetricsAndCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{Port: "8080", DefaultPageSize: 5, MaxPageSize: 10, TemporalDisabled: true}
	services, cleanup, err := bootstrap.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	provider, metrics, err := platformobservability.NewPrometheusMeterProvider(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	instruments := &platformobservability.Instruments{MeterProvider: provider, MetricsHandler: metrics}

	router := NewRouter(cfg, services, orderworkflows.NewInlineOrderWorkflows(services.Orders), instruments)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books?size=50", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"size":10`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPurgeSessionsStopsWithContext(t *testing.T) {
	services, cleanup, err := bootstrap.Build(context.Background(), config.Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		purgeSessions(ctx, services.Users, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purge loop did not stop")
	}
}

func TestChoosePlacement_MemoryServicesPlaceInline(t *testing.T) {
	services, cleanup, err := bootstrap.Build(context.Background(), config.Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	require.False(t, services.Persistent)

	dialed := false
	placement, closePlacement := choosePlacement(services, func() (client.Client, error) {
		dialed = true
		return nil, errors.New("unexpected dial")
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer closePlacement()

	assert.False(t, dialed, "workflows must not be used without a shared database")
	assert.IsType(t, &orderworkflows.InlineOrderWorkflows{}, placement)
}

func TestChoosePlacement_FallsBackInlineWhenTemporalUnreachable(t *testing.T) {
	services, cleanup, err := bootstrap.Build(context.Background(), config.Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	services.Persistent = true

	placement, closePlacement := choosePlacement(services, func() (client.Client, error) {
		return nil, errors.New("connection refused")
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer closePlacement()

	assert.IsType(t, &orderworkflows.InlineOrderWorkflows{}, placement)
}
