package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

const tracerName = "github.com/Apurer/go-gin-bookstore/internal/domains/cart/adapters/observability/service"

// Service decorates the cart service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core cart service.
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

func (s *Service) AddItem(ctx context.Context, userID, bookID int64, quantity int) (*domain.Line, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("book.id", bookID),
		attribute.Int("cart.quantity", quantity),
	))
	defer span.End()

	line, err := s.inner.AddItem(ctx, userID, bookID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add item to cart",
			slog.Int64("user.id", userID), slog.Int64("book.id", bookID))
	}
	s.metrics.recordAdded(ctx, quantity)
	s.logInfo(ctx, "item added to cart",
		slog.Int64("user.id", userID), slog.Int64("cart.line_id", line.ID), slog.Int("cart.quantity", line.Quantity))
	return line, nil
}

func (s *Service) UpdateLine(ctx context.Context, userID, lineID int64, quantity int) (ports.LineChange, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateLine", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("cart.line_id", lineID),
		attribute.Int("cart.quantity", quantity),
	))
	defer span.End()

	change, err := s.inner.UpdateLine(ctx, userID, lineID, quantity)
	if err != nil {
		return ports.LineChange{}, s.handleError(ctx, span, err, "failed to update cart line",
			slog.Int64("user.id", userID), slog.Int64("cart.line_id", lineID))
	}
	if change.Removed {
		s.metrics.recordRemoved(ctx)
	}
	span.SetAttributes(attribute.Bool("cart.line_removed", change.Removed))
	return change, nil
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID int64) error {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveLine", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("cart.line_id", lineID),
	))
	defer span.End()

	if err := s.inner.RemoveLine(ctx, userID, lineID); err != nil {
		return s.handleError(ctx, span, err, "failed to remove cart line",
			slog.Int64("user.id", userID), slog.Int64("cart.line_id", lineID))
	}
	s.metrics.recordRemoved(ctx)
	return nil
}

func (s *Service) GetLine(ctx context.Context, userID, lineID int64) (*domain.Line, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetLine", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("cart.line_id", lineID),
	))
	defer span.End()
	return s.inner.GetLine(ctx, userID, lineID)
}

func (s *Service) ListLines(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Line], error) {
	ctx, span := s.tracer.Start(ctx, "CartService.ListLines", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int("page.number", page.Page),
	))
	defer span.End()

	result, err := s.inner.ListLines(ctx, userID, page)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to list cart lines", slog.Int64("user.id", userID))
	}
	span.SetAttributes(attribute.Int64("page.total_items", result.TotalItems))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	itemsAdded   metric.Int64Counter
	linesRemoved metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	itemsAdded, _ := m.Int64Counter("cart.service.items_added", metric.WithDescription("Number of book copies added to carts"))
	linesRemoved, _ := m.Int64Counter("cart.service.lines_removed", metric.WithDescription("Number of cart lines removed by users"))
	return serviceMetrics{itemsAdded: itemsAdded, linesRemoved: linesRemoved}
}

func (m serviceMetrics) recordAdded(ctx context.Context, quantity int) {
	if m.itemsAdded != nil {
		m.itemsAdded.Add(ctx, int64(quantity))
	}
}

func (m serviceMetrics) recordRemoved(ctx context.Context) {
	if m.linesRemoved != nil {
		m.linesRemoved.Add(ctx, 1)
	}
}

var _ ports.Service = (*Service)(nil)
