package bookstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
)

// AuthAPI implements registration, sessions and the caller profile.
type AuthAPI struct {
	service userports.Service
}

// NewAuthAPI wires dependencies.
func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /auth/register
// Create an account
func (api *AuthAPI) Register(c *gin.Context) {
	var payload userhttpmapper.RegisterRequest
	if !bindJSON(c, &payload) {
		return
	}
	user, err := api.service.Register(c.Request.Context(), userhttpmapper.ToRegistration(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainUser(user))
}

// Post /auth/login
// Exchange credentials for a bearer token
func (api *AuthAPI) Login(c *gin.Context) {
	var payload userhttpmapper.LoginRequest
	if !bindJSON(c, &payload) {
		return
	}
	session, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromSession(session))
}

// Post /auth/logout
// End the current session
func (api *AuthAPI) Logout(c *gin.Context) {
	token, _ := bearerToken(c.GetHeader("Authorization"))
	if err := api.service.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /users/me
// Profile of the authenticated caller
func (api *AuthAPI) CurrentUser(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	user, err := api.service.GetUser(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}
