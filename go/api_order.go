package bookstoreserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/http/mapper"
	orderports "github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

// HeaderIdempotencyKey makes order placement safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// OrderAPI implements the order section. Placement goes through the
// orchestrator so it survives process restarts when a workflow engine is
// configured.
type OrderAPI struct {
	service      orderports.Service
	orchestrator orderports.PlacementOrchestrator
	paging       Paging
}

// NewOrderAPI wires dependencies. A nil orchestrator places orders directly
// through the service.
func NewOrderAPI(service orderports.Service, orchestrator orderports.PlacementOrchestrator, paging Paging) OrderAPI {
	if orchestrator == nil {
		orchestrator = service
	}
	return OrderAPI{service: service, orchestrator: orchestrator, paging: paging}
}

// Post /users/me/orders
// Turn the caller's cart into an order
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLength {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("Idempotency-Key must be at most 255 characters"))
		return
	}
	order, err := api.orchestrator.PlaceOrder(c.Request.Context(), orderports.PlaceOrderInput{
		UserID:         id.UserID,
		IdempotencyKey: key,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

// Get /users/me/orders
// List the caller's orders, newest first
func (api *OrderAPI) ListMyOrders(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	api.listForUser(c, id.UserID)
}

// Get /users/me/orders/:orderId
// Find one of the caller's orders
func (api *OrderAPI) GetMyOrder(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetOrderForUser(c.Request.Context(), orderID, id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Get /orders
// List every order
func (api *OrderAPI) ListOrders(c *gin.Context) {
	page, ok := api.paging.parsePage(c)
	if !ok {
		return
	}
	orders, err := api.service.ListAllOrders(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(orders, orderhttpmapper.FromDomainOrder))
}

// Get /orders/:orderId
// Find any order by ID
func (api *OrderAPI) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /orders/:orderId
// Move an order along its lifecycle
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload orderhttpmapper.UpdateStatusRequest
	if !bindJSON(c, &payload) {
		return
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), orderID, payload.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Get /admin/users/:userId/orders
// List any user's orders
func (api *OrderAPI) AdminListUserOrders(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	api.listForUser(c, userID)
}

func (api *OrderAPI) listForUser(c *gin.Context, userID int64) {
	page, ok := api.paging.parsePage(c)
	if !ok {
		return
	}
	orders, err := api.service.ListOrdersForUser(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(orders, orderhttpmapper.FromDomainOrder))
}
