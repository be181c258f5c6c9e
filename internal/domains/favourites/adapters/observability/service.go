package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

const tracerName = "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/adapters/observability/service"

// Service decorates the favourites service with tracing and logging.
type Service struct {
	inner  ports.Service
	tracer trace.Tracer
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option { return func(s *Service) { s.logger = logger } }

func WithTracer(tr trace.Tracer) Option { return func(s *Service) { s.tracer = tr } }

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{inner: inner}
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

func (s *Service) AddFavourite(ctx context.Context, userID, bookID int64) (*domain.Favourite, error) {
	ctx, span := s.tracer.Start(ctx, "FavouritesService.AddFavourite", trace.WithAttributes(
		attribute.Int64("user.id", userID), attribute.Int64("book.id", bookID)))
	defer span.End()

	fav, err := s.inner.AddFavourite(ctx, userID, bookID)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to add favourite", userID, bookID)
	}
	return fav, nil
}

func (s *Service) ListFavourites(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Favourite], error) {
	ctx, span := s.tracer.Start(ctx, "FavouritesService.ListFavourites", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	result, err := s.inner.ListFavourites(ctx, userID, page)
	if err != nil {
		return result, s.fail(ctx, span, err, "failed to list favourites", userID, 0)
	}
	return result, nil
}

func (s *Service) RemoveFavourite(ctx context.Context, userID, bookID int64) error {
	ctx, span := s.tracer.Start(ctx, "FavouritesService.RemoveFavourite", trace.WithAttributes(
		attribute.Int64("user.id", userID), attribute.Int64("book.id", bookID)))
	defer span.End()

	if err := s.inner.RemoveFavourite(ctx, userID, bookID); err != nil {
		return s.fail(ctx, span, err, "failed to remove favourite", userID, bookID)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string, userID, bookID int64) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, msg,
			slog.Int64("user.id", userID), slog.Int64("book.id", bookID), slog.String("error", err.Error()))
	}
	return err
}

var _ ports.Service = (*Service)(nil)
