package bookstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Access is the authorization level a route requires.
type Access int

const (
	// AccessPublic routes need no credentials.
	AccessPublic Access = iota
	// AccessUser routes need a valid bearer token.
	AccessUser
	// AccessAdmin routes need a bearer token of an ADMIN user.
	AccessAdmin
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Access is the authorization level enforced before the handler runs.
	Access Access
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the bookstore routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	authenticated := RequireIdentity(handleFunctions.Authenticator)
	admin := RequireAdmin()
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := make([]gin.HandlerFunc, 0, 3)
		switch route.Access {
		case AccessUser:
			handlers = append(handlers, authenticated)
		case AccessAdmin:
			handlers = append(handlers, authenticated, admin)
		}
		router.Handle(route.Method, route.Pattern, append(handlers, route.HandlerFunc)...)
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	// Authenticator resolves bearer tokens for protected routes.
	Authenticator Authenticator

	AuthAPI      AuthAPI
	UserAPI      UserAPI
	BookAPI      BookAPI
	CartAPI      CartAPI
	OrderAPI     OrderAPI
	FavouriteAPI FavouriteAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Register", http.MethodPost, "/auth/register", handleFunctions.AuthAPI.Register, AccessPublic},
		{"Login", http.MethodPost, "/auth/login", handleFunctions.AuthAPI.Login, AccessPublic},
		{"Logout", http.MethodPost, "/auth/logout", handleFunctions.AuthAPI.Logout, AccessUser},
		{"CurrentUser", http.MethodGet, "/users/me", handleFunctions.AuthAPI.CurrentUser, AccessUser},
		{"UpdateCurrentUser", http.MethodPut, "/users/me", handleFunctions.UserAPI.UpdateMe, AccessUser},
		{"DeleteCurrentUser", http.MethodDelete, "/users/me", handleFunctions.UserAPI.DeleteMe, AccessUser},
		{"ListUsers", http.MethodGet, "/admin/users", handleFunctions.UserAPI.ListUsers, AccessAdmin},
		{"GetUser", http.MethodGet, "/admin/users/:userId", handleFunctions.UserAPI.GetUser, AccessAdmin},
		{"UpdateUser", http.MethodPut, "/admin/users/:userId", handleFunctions.UserAPI.UpdateUser, AccessAdmin},
		{"DeleteUser", http.MethodDelete, "/admin/users/:userId", handleFunctions.UserAPI.DeleteUser, AccessAdmin},

		{"ListBooks", http.MethodGet, "/books", handleFunctions.BookAPI.ListBooks, AccessPublic},
		{"GetBook", http.MethodGet, "/books/:bookId", handleFunctions.BookAPI.GetBook, AccessPublic},
		{"CreateBook", http.MethodPost, "/books", handleFunctions.BookAPI.CreateBook, AccessAdmin},
		{"UpdateBook", http.MethodPut, "/books/:bookId", handleFunctions.BookAPI.UpdateBook, AccessAdmin},
		{"DeleteBook", http.MethodDelete, "/books/:bookId", handleFunctions.BookAPI.DeleteBook, AccessAdmin},

		{"AddCartItem", http.MethodPost, "/users/me/shopping-cart/items", handleFunctions.CartAPI.AddItem, AccessUser},
		{"ListCartItems", http.MethodGet, "/users/me/shopping-cart/items", handleFunctions.CartAPI.ListItems, AccessUser},
		{"GetCartItem", http.MethodGet, "/users/me/shopping-cart/items/:itemId", handleFunctions.CartAPI.GetItem, AccessUser},
		{"UpdateCartItem", http.MethodPut, "/users/me/shopping-cart/items/:itemId", handleFunctions.CartAPI.UpdateItem, AccessUser},
		{"RemoveCartItem", http.MethodDelete, "/users/me/shopping-cart/items/:itemId", handleFunctions.CartAPI.RemoveItem, AccessUser},
		{"AdminListCartItems", http.MethodGet, "/admin/users/:userId/shopping-cart/items", handleFunctions.CartAPI.AdminListItems, AccessAdmin},
		{"AdminGetCartItem", http.MethodGet, "/admin/users/:userId/shopping-cart/items/:itemId", handleFunctions.CartAPI.AdminGetItem, AccessAdmin},

		{"PlaceOrder", http.MethodPost, "/users/me/orders", handleFunctions.OrderAPI.PlaceOrder, AccessUser},
		{"ListMyOrders", http.MethodGet, "/users/me/orders", handleFunctions.OrderAPI.ListMyOrders, AccessUser},
		{"GetMyOrder", http.MethodGet, "/users/me/orders/:orderId", handleFunctions.OrderAPI.GetMyOrder, AccessUser},
		{"ListOrders", http.MethodGet, "/orders", handleFunctions.OrderAPI.ListOrders, AccessAdmin},
		{"GetOrder", http.MethodGet, "/orders/:orderId", handleFunctions.OrderAPI.GetOrder, AccessAdmin},
		{"UpdateOrderStatus", http.MethodPut, "/orders/:orderId", handleFunctions.OrderAPI.UpdateOrderStatus, AccessAdmin},
		{"AdminListUserOrders", http.MethodGet, "/admin/users/:userId/orders", handleFunctions.OrderAPI.AdminListUserOrders, AccessAdmin},

		{"AddFavourite", http.MethodPost, "/users/me/favourite-books", handleFunctions.FavouriteAPI.AddFavourite, AccessUser},
		{"ListFavourites", http.MethodGet, "/users/me/favourite-books", handleFunctions.FavouriteAPI.ListFavourites, AccessUser},
		{"RemoveFavourite", http.MethodDelete, "/users/me/favourite-books/:bookId", handleFunctions.FavouriteAPI.RemoveFavourite, AccessUser},
		{"AdminListFavourites", http.MethodGet, "/admin/users/:userId/favourite-books", handleFunctions.FavouriteAPI.AdminListFavourites, AccessAdmin},
	}
}
