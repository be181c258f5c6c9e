package ports

import (
	"context"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

// PlaceOrderInput is the command that drains a cart into an order.
type PlaceOrderInput struct {
	UserID int64 `json:"userId"`
	// IdempotencyKey, when set, makes the placement safe to retry.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// Service exposes order use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	GetOrderForUser(ctx context.Context, orderID, userID int64) (*domain.Order, error)
	ListOrdersForUser(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Order], error)
	ListAllOrders(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Order], error)
	UpdateStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error)
}
