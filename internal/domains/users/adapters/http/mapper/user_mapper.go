package mapper

import (
	"time"

	userdomain "github.com/Apurer/go-gin-bookstore/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
)

// RegisterRequest is the payload accepted by the registration endpoint.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest changes the profile fields that are present.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

// User represents the transport-level user payload. The password hash never leaves the service.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Token is returned after a successful login.
type Token struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ToRegistration converts a transport payload into the service input.
func ToRegistration(req RegisterRequest) userports.Registration {
	return userports.Registration{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
}

// ToProfileUpdate converts a transport payload into the service input.
func ToProfileUpdate(req UpdateProfileRequest) userports.ProfileUpdate {
	return userports.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	}
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

// FromSession converts an issued session into a bearer token payload.
func FromSession(session userdomain.Session) Token {
	return Token{Token: session.Token, TokenType: "Bearer", ExpiresAt: session.ExpiresAt}
}
