package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/application"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

const tracerName = "github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder", trace.WithAttributes(
		attribute.Int64("user.id", input.UserID),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()

	order, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.Int64("user.id", input.UserID))
	}
	span.SetAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.Int("order.lines", len(order.Lines)),
		attribute.String("order.total", order.Total.StringFixed(2)),
	)
	s.metrics.recordPlaced(ctx, order)
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", order.ID),
		slog.Int64("user.id", order.UserID),
		slog.Int("order.lines", len(order.Lines)),
		slog.String("order.total", order.Total.StringFixed(2)),
	)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get order", slog.Int64("order.id", orderID))
	}
	return order, nil
}

func (s *Service) GetOrderForUser(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrderForUser", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	order, err := s.inner.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get order for user",
			slog.Int64("order.id", orderID), slog.Int64("user.id", userID))
	}
	return order, nil
}

func (s *Service) ListOrdersForUser(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Order], error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrdersForUser", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int("page.number", page.Page),
	))
	defer span.End()

	result, err := s.inner.ListOrdersForUser(ctx, userID, page)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to list orders for user", slog.Int64("user.id", userID))
	}
	span.SetAttributes(attribute.Int64("page.total_items", result.TotalItems))
	return result, nil
}

func (s *Service) ListAllOrders(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Order], error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListAllOrders", trace.WithAttributes(attribute.Int("page.number", page.Page)))
	defer span.End()

	result, err := s.inner.ListAllOrders(ctx, page)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int64("page.total_items", result.TotalItems))
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.status.requested", status),
	))
	defer span.End()

	order, err := s.inner.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.Int64("order.id", orderID), slog.String("order.status.requested", status))
	}
	s.metrics.recordTransition(ctx, order.Status)
	s.logInfo(ctx, "order status updated", slog.Int64("order.id", orderID), slog.String("order.status", string(order.Status)))
	return order, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError logs business rejections at warn level and everything else as errors.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger == nil {
		return err
	}
	level := slog.LevelError
	if isRejection(err) {
		level = slog.LevelWarn
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

func isRejection(err error) bool {
	for _, target := range []error{
		domain.ErrEmptyCart,
		domain.ErrInvalidTransition,
		application.ErrInvalidInput,
		ports.ErrNotFound,
		ports.ErrUserNotFound,
		ports.ErrItemNotFound,
		ports.ErrIdempotencyConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type serviceMetrics struct {
	ordersPlaced      metric.Int64Counter
	itemsOrdered      metric.Int64Counter
	statusTransitions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed"))
	itemsOrdered, _ := m.Int64Counter("orders.service.items_ordered", metric.WithDescription("Number of book copies ordered"))
	statusTransitions, _ := m.Int64Counter("orders.service.status_transitions", metric.WithDescription("Number of order status changes by target status"))
	return serviceMetrics{ordersPlaced: ordersPlaced, itemsOrdered: itemsOrdered, statusTransitions: statusTransitions}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, order *domain.Order) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1)
	}
	if m.itemsOrdered != nil {
		m.itemsOrdered.Add(ctx, int64(order.ItemCount()))
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, status domain.Status) {
	if m.statusTransitions != nil {
		m.statusTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	}
}

var _ ports.Service = (*Service)(nil)
