package bookstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
)

// UserAPI implements account maintenance for the caller and for admins.
type UserAPI struct {
	service userports.Service
	paging  Paging
}

// NewUserAPI wires dependencies.
func NewUserAPI(service userports.Service, paging Paging) UserAPI {
	return UserAPI{service: service, paging: paging}
}

// Put /users/me
// Change the caller's profile or password
func (api *UserAPI) UpdateMe(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	api.update(c, id.UserID)
}

// Delete /users/me
// Close the caller's account
func (api *UserAPI) DeleteMe(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	api.delete(c, id.UserID)
}

// Get /admin/users
// List accounts
func (api *UserAPI) ListUsers(c *gin.Context) {
	page, ok := api.paging.parsePage(c)
	if !ok {
		return
	}
	result, err := api.service.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(result, userhttpmapper.FromDomainUser))
}

// Get /admin/users/:userId
// Find an account
func (api *UserAPI) GetUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	user, err := api.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Put /admin/users/:userId
// Change an account's profile or password
func (api *UserAPI) UpdateUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	api.update(c, userID)
}

// Delete /admin/users/:userId
// Close an account
func (api *UserAPI) DeleteUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	api.delete(c, userID)
}

func (api *UserAPI) update(c *gin.Context, userID int64) {
	var payload userhttpmapper.UpdateProfileRequest
	if !bindJSON(c, &payload) {
		return
	}
	user, err := api.service.UpdateProfile(c.Request.Context(), userID, userhttpmapper.ToProfileUpdate(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

func (api *UserAPI) delete(c *gin.Context, userID int64) {
	if err := api.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
