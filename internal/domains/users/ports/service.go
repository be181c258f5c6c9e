package ports

import (
	"context"

	"github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/identity"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

// Registration carries the fields accepted when creating an account.
type Registration struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

// ProfileUpdate carries the account fields a user may change. Nil fields are
// left untouched. Usernames and roles cannot be changed.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

// AccountData is data another bounded context keeps per account. It is
// removed in the same unit of work that deletes the account.
type AccountData interface {
	DeleteForUser(ctx context.Context, userID int64) error
}

// AccountDataFunc adapts a function to AccountData.
type AccountDataFunc func(ctx context.Context, userID int64) error

func (f AccountDataFunc) DeleteForUser(ctx context.Context, userID int64) error {
	return f(ctx, userID)
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, reg Registration) (*domain.User, error)
	Login(ctx context.Context, username, password string) (domain.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (identity.Identity, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context, page pagination.Request) (pagination.Page[*domain.User], error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*domain.User, error)
	DeleteAccount(ctx context.Context, id int64) error
	EnsureAdmin(ctx context.Context, username, password string) (*domain.User, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}
