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

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

const tracerName = "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
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

// New wraps the core catalog service.
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

func (s *Service) CreateBook(ctx context.Context, details domain.Details) (*domain.Book, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateBook", trace.WithAttributes(attribute.String("book.category", details.Category)))
	defer span.End()

	s.logInfo(ctx, "creating book", slog.String("book.title", details.Title))
	book, err := s.inner.CreateBook(ctx, details)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create book", slog.String("book.title", details.Title))
	}
	s.metrics.recordMutation(ctx, "create")
	s.logInfo(ctx, "book created", slog.Int64("book.id", book.ID))
	return book, nil
}

func (s *Service) UpdateBook(ctx context.Context, id int64, details domain.Details) (*domain.Book, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateBook", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer span.End()

	book, err := s.inner.UpdateBook(ctx, id, details)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update book", slog.Int64("book.id", id))
	}
	s.metrics.recordMutation(ctx, "update")
	s.logInfo(ctx, "book updated", slog.Int64("book.id", id), slog.String("book.price", book.Price.StringFixed(2)))
	return book, nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetBook", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer span.End()

	book, err := s.inner.GetBook(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load book", slog.Int64("book.id", id))
	}
	return book, nil
}

func (s *Service) ListBooks(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Book], error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListBooks",
		trace.WithAttributes(attribute.Int("page.number", page.Page), attribute.Int("page.size", page.Size)))
	defer span.End()

	result, err := s.inner.ListBooks(ctx, page)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to list books")
	}
	span.SetAttributes(attribute.Int64("page.total_items", result.TotalItems))
	return result, nil
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteBook", trace.WithAttributes(attribute.Int64("book.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting book", slog.Int64("book.id", id))
	if err := s.inner.DeleteBook(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete book", slog.Int64("book.id", id))
	}
	s.metrics.recordMutation(ctx, "delete")
	return nil
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
	mutations metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	mutations, _ := m.Int64Counter("catalog.service.book_mutations", metric.WithDescription("Number of book create, update, and delete operations"))
	return serviceMetrics{mutations: mutations}
}

func (m serviceMetrics) recordMutation(ctx context.Context, op string) {
	if m.mutations != nil {
		m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	}
}

var _ ports.Service = (*Service)(nil)
