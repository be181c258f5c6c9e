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

	userdomain "github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/identity"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

const tracerName = "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
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

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Register(ctx context.Context, reg userports.Registration) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register", trace.WithAttributes(attribute.String("user.username", reg.Username)))
	defer span.End()
	s.logInfo(ctx, "registering user", slog.String("username", reg.Username))
	result, err := s.inner.Register(ctx, reg)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user", slog.String("username", reg.Username))
	}
	s.metrics.recordRegistered(ctx)
	s.logInfo(ctx, "user registered", slog.Int64("user.id", result.ID))
	return result, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (userdomain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()
	session, err := s.inner.Login(ctx, username, password)
	if err != nil {
		s.metrics.recordLogin(ctx, false)
		return userdomain.Session{}, s.handleError(ctx, span, err, "login failed", slog.String("username", username))
	}
	s.metrics.recordLogin(ctx, true)
	span.SetAttributes(attribute.Int64("user.id", session.UserID))
	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

// Authenticate runs on every request, so only failures other than a bad token are logged.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	id, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return identity.Identity{}, err
	}
	span.SetAttributes(attribute.Int64("user.id", id.UserID), attribute.String("user.role", id.Role))
	return id, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()
	return s.inner.GetUser(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, page pagination.Request) (pagination.Page[*userdomain.User], error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListUsers", trace.WithAttributes(attribute.Int("page.number", page.Page)))
	defer span.End()
	result, err := s.inner.ListUsers(ctx, page)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to list users")
	}
	return result, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, update userports.ProfileUpdate) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateProfile", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()
	result, err := s.inner.UpdateProfile(ctx, id, update)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update profile", slog.Int64("user.id", id))
	}
	s.logInfo(ctx, "profile updated", slog.Int64("user.id", id), slog.Bool("password.changed", update.Password != nil))
	return result, nil
}

func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "UserService.DeleteAccount", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()
	if err := s.inner.DeleteAccount(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete account", slog.Int64("user.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "account deleted", slog.Int64("user.id", id))
	return nil
}

func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.EnsureAdmin", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()
	result, err := s.inner.EnsureAdmin(ctx, username, password)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to bootstrap admin", slog.String("username", username))
	}
	s.logInfo(ctx, "admin account ready", slog.Int64("user.id", result.ID), slog.String("username", result.Username))
	return result, nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.PurgeExpiredSessions")
	defer span.End()
	purged, err := s.inner.PurgeExpiredSessions(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge sessions")
	}
	s.metrics.recordPurged(ctx, purged)
	s.logInfo(ctx, "expired sessions purged", slog.Int64("sessions.purged", purged))
	return purged, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
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

type serviceMetrics struct {
	registered metric.Int64Counter
	logins     metric.Int64Counter
	purged     metric.Int64Counter
	deleted    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of users registered"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of login attempts"))
	purged, _ := m.Int64Counter("users.service.sessions_purged", metric.WithDescription("Number of expired sessions removed"))
	deleted, _ := m.Int64Counter("users.service.deleted", metric.WithDescription("Number of accounts deleted"))
	return serviceMetrics{registered: registered, logins: logins, purged: purged, deleted: deleted}
}

func (m serviceMetrics) recordRegistered(ctx context.Context) {
	if m.registered != nil {
		m.registered.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context, ok bool) {
	if m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", ok)))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.deleted != nil {
		m.deleted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordPurged(ctx context.Context, n int64) {
	if m.purged != nil && n > 0 {
		m.purged.Add(ctx, n)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
