package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/identity"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

// DefaultSessionTTL applies when no session lifetime is configured.
const DefaultSessionTTL = 24 * time.Hour

// Service exposes user bounded context use cases.
type Service struct {
	repo        ports.Repository
	sessions    ports.SessionStore
	accountData []ports.AccountData
	tx          tx.Transactor
	sessionTTL  time.Duration
	now         func() time.Time
	newToken    func() string
}

type Option func(*Service)

// WithSessionTTL overrides how long issued tokens stay valid.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithTransactor sets the unit of work used by account deletion.
func WithTransactor(t tx.Transactor) Option {
	return func(s *Service) {
		if t != nil {
			s.tx = t
		}
	}
}

// WithAccountData registers data owned by accounts in other contexts, such as
// carts and favourites, so DeleteAccount removes it with the account.
func WithAccountData(data ...ports.AccountData) Option {
	return func(s *Service) {
		for _, d := range data {
			if d != nil {
				s.accountData = append(s.accountData, d)
			}
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		tx:         tx.Passthrough,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
		newToken:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Register(ctx context.Context, reg ports.Registration) (*domain.User, error) {
	user, err := domain.NewUser(reg.Username, reg.Password)
	if err != nil {
		return nil, mapError(err)
	}
	if err := user.UpdateProfile(reg.FirstName, reg.LastName, reg.Email); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Create(ctx, user)
}

// Login verifies credentials and issues a bearer token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Session{}, mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.Session{}, mapError(ports.ErrInvalidCredentials)
	}
	if err != nil {
		return domain.Session{}, err
	}
	if !user.CheckPassword(password) {
		return domain.Session{}, mapError(ports.ErrInvalidCredentials)
	}
	session := domain.Session{
		Token:     s.newToken(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	err := s.sessions.Delete(ctx, token)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return nil
	}
	return err
}

// Authenticate resolves a bearer token to the caller identity. Expired
// sessions are removed on sight.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Identity{}, ErrUnauthenticated
	}
	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return identity.Identity{}, ErrUnauthenticated
	}
	if err != nil {
		return identity.Identity{}, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return identity.Identity{}, ErrUnauthenticated
	}
	user, err := s.repo.GetByID(ctx, session.UserID)
	if errors.Is(err, ports.ErrNotFound) {
		return identity.Identity{}, ErrUnauthenticated
	}
	if err != nil {
		return identity.Identity{}, err
	}
	return identity.Identity{UserID: user.ID, Username: user.Username, Role: string(user.Role)}, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, page pagination.Request) (pagination.Page[*domain.User], error) {
	return s.repo.List(ctx, page)
}

// UpdateProfile applies the non-nil fields of update. A new password is
// hashed; existing sessions stay valid.
func (s *Service) UpdateProfile(ctx context.Context, id int64, update ports.ProfileUpdate) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	firstName, lastName, email := user.FirstName, user.LastName, user.Email
	if update.FirstName != nil {
		firstName = *update.FirstName
	}
	if update.LastName != nil {
		lastName = *update.LastName
	}
	if update.Email != nil {
		email = *update.Email
	}
	if err := user.UpdateProfile(firstName, lastName, email); err != nil {
		return nil, mapError(err)
	}
	if update.Password != nil {
		if err := user.SetPassword(*update.Password); err != nil {
			return nil, mapError(err)
		}
	}
	return s.repo.Update(ctx, user)
}

// DeleteAccount removes the account, its sessions, and every registered piece
// of account data in one unit of work. Orders are kept.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		if _, err := s.sessions.DeleteByUser(ctx, id); err != nil {
			return err
		}
		for _, data := range s.accountData {
			if err := data.DeleteForUser(ctx, id); err != nil {
				return err
			}
		}
		return s.repo.Delete(ctx, id)
	})
}

// EnsureAdmin creates the named account with the ADMIN role, or promotes it
// when it already exists. The password of an existing account is kept.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	existing, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing, nil
		}
		existing.Promote()
		return s.repo.Update(ctx, existing)
	case !errors.Is(err, ports.ErrNotFound):
		return nil, err
	}
	user, err := domain.NewUser(username, password)
	if err != nil {
		return nil, mapError(err)
	}
	user.Promote()
	return s.repo.Create(ctx, user)
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx, s.now())
}

var _ ports.Service = (*Service)(nil)
