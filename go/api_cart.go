package bookstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	carthttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/cart/adapters/http/mapper"
	cartports "github.com/Apurer/go-gin-bookstore/internal/domains/cart/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

// CartAPI implements the shopping cart section.
type CartAPI struct {
	service cartports.Service
	paging  Paging
}

// NewCartAPI wires dependencies.
func NewCartAPI(service cartports.Service, paging Paging) CartAPI {
	return CartAPI{service: service, paging: paging}
}

// Post /users/me/shopping-cart/items
// Add a book to the caller's cart
func (api *CartAPI) AddItem(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var payload carthttpmapper.AddItemRequest
	if !bindJSON(c, &payload) {
		return
	}
	line, err := api.service.AddItem(c.Request.Context(), id.UserID, payload.BookID, payload.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, carthttpmapper.FromDomainLine(line))
}

// Get /users/me/shopping-cart/items
// List the caller's cart lines
func (api *CartAPI) ListItems(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	api.listLines(c, id.UserID)
}

// Get /users/me/shopping-cart/items/:itemId
// Find one of the caller's cart lines
func (api *CartAPI) GetItem(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	api.getLine(c, id.UserID)
}

// Put /users/me/shopping-cart/items/:itemId
// Overwrite a line quantity; zero removes the line
func (api *CartAPI) UpdateItem(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	lineID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	var payload carthttpmapper.UpdateLineRequest
	if !bindJSON(c, &payload) {
		return
	}
	if payload.Quantity == nil {
		respondProblem(c, apierrors.NewValidationProblem(map[string]string{"quantity": "is required"}))
		return
	}
	change, err := api.service.UpdateLine(c.Request.Context(), id.UserID, lineID, *payload.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	if change.Removed {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainLine(change.Line))
}

// Delete /users/me/shopping-cart/items/:itemId
// Remove a line from the caller's cart
func (api *CartAPI) RemoveItem(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	lineID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	if err := api.service.RemoveLine(c.Request.Context(), id.UserID, lineID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /admin/users/:userId/shopping-cart/items
// List any user's cart lines
func (api *CartAPI) AdminListItems(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	api.listLines(c, userID)
}

// Get /admin/users/:userId/shopping-cart/items/:itemId
// Find a line in any user's cart
func (api *CartAPI) AdminGetItem(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	api.getLine(c, userID)
}

func (api *CartAPI) listLines(c *gin.Context, userID int64) {
	page, ok := api.paging.parsePage(c)
	if !ok {
		return
	}
	lines, err := api.service.ListLines(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(lines, carthttpmapper.FromDomainLine))
}

func (api *CartAPI) getLine(c *gin.Context, userID int64) {
	lineID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	line, err := api.service.GetLine(c.Request.Context(), userID, lineID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainLine(line))
}
