package ports

import (
	"context"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
)

// PlacementOrchestrator runs order placement, durably when a workflow engine is available.
type PlacementOrchestrator interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
}
