// Package worker runs the Temporal order placement worker and the outbox relay.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	temporalworker "go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"golang.org/x/sync/errgroup"

	"github.com/Apurer/go-gin-bookstore/internal/app/bootstrap"
	"github.com/Apurer/go-gin-bookstore/internal/app/config"
	orderports "github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/go-gin-bookstore/internal/platform/observability"
	orderactivities "github.com/Apurer/go-gin-bookstore/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-bookstore/internal/platform/temporal/workflows/orders"
)

const serviceName = "bookstore-worker"

// Run starts the worker and blocks until ctx is cancelled or a component fails.
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
	if err := requirePersistent(services); err != nil {
		return err
	}

	temporalClient, err := bootstrap.DialTemporal(cfg, instruments)
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	w := temporalworker.New(temporalClient, orderworkflows.PlacementTaskQueue, temporalworker.Options{})
	Register(w, services.Orders)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := w.Start(); err != nil {
			return fmt.Errorf("start Temporal worker: %w", err)
		}
		logger.Info("worker listening", slog.String("taskQueue", orderworkflows.PlacementTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
		<-gctx.Done()
		w.Stop()
		logger.Info("Temporal worker stopped")
		return nil
	})
	if relay, closeRelay := bootstrap.NewRelay(cfg, services, logger); relay != nil {
		defer closeRelay()
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	} else {
		logger.Info("KAFKA_BROKERS not set, outbox relay disabled")
	}
	return g.Wait()
}

// requirePersistent refuses to run on memory repositories, where orders placed
// by workflows would never reach the API process.
func requirePersistent(services *bootstrap.Services) error {
	if !services.Persistent {
		return fmt.Errorf("order worker: %w", bootstrap.ErrNotPersistent)
	}
	return nil
}

// Register installs the placement workflow and its activity on w.
func Register(w temporalworker.Registry, orders orderports.Service) {
	activities := orderactivities.NewActivities(orders)
	w.RegisterWorkflowWithOptions(orderworkflows.PlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.PlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})
}
