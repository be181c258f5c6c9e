package bookstoreserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmemory "github.com/Apurer/go-gin-bookstore/internal/domains/cart/adapters/memory"
	cartapp "github.com/Apurer/go-gin-bookstore/internal/domains/cart/application"
	catalogmemory "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/application"
	favouritememory "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/adapters/memory"
	favouriteapp "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/application"
	ordersmemory "github.com/Apurer/go-gin-bookstore/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/go-gin-bookstore/internal/domains/orders/application"
	usermemory "github.com/Apurer/go-gin-bookstore/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/go-gin-bookstore/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-bookstore/internal/domains/users/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

type server struct {
	router     *gin.Engine
	adminToken string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	transactor := tx.NewMemory()
	books := catalogmemory.NewRepository()
	users := usermemory.NewRepository()
	carts := cartmemory.NewRepository()
	favourites := favouritememory.NewRepository()

	userService := userapp.NewService(users, usermemory.NewSessionStore(),
		userapp.WithTransactor(transactor),
		userapp.WithAccountData(
			userports.AccountDataFunc(carts.DeleteCart),
			userports.AccountDataFunc(func(ctx context.Context, userID int64) error {
				_, err := favourites.RemoveAllForUser(ctx, userID)
				return err
			}),
		),
	)
	orderService := ordersapp.NewService(ordersapp.Dependencies{
		Orders:      ordersmemory.NewRepository(),
		Carts:       carts,
		Books:       books,
		Users:       users,
		Idempotency: ordersmemory.NewIdempotencyStore(),
		Transactor:  transactor,
	})

	router := NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{
		Authenticator: userService,
		AuthAPI:       NewAuthAPI(userService),
		UserAPI:       NewUserAPI(userService, DefaultPaging),
		BookAPI:       NewBookAPI(catalogapp.NewService(books), DefaultPaging),
		CartAPI:       NewCartAPI(cartapp.NewService(carts, books, users, transactor), DefaultPaging),
		OrderAPI:      NewOrderAPI(orderService, nil, DefaultPaging),
		FavouriteAPI:  NewFavouriteAPI(favouriteapp.NewService(favourites, books, users), DefaultPaging),
	})

	_, err := userService.EnsureAdmin(context.Background(), "admin", "admin-password")
	require.NoError(t, err)
	s := &server{router: router}
	s.adminToken = s.login(t, "admin", "admin-password")
	return s
}

func (s *server) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *server) register(t *testing.T, username string) (int64, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"username": username,
		"password": "correct-horse",
		"email":    username + "@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var user struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &user)
	return user.ID, s.login(t, username, "correct-horse")
}

func (s *server) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var token struct {
		Token string `json:"token"`
	}
	decode(t, rec, &token)
	require.NotEmpty(t, token.Token)
	return token.Token
}

func (s *server) book(t *testing.T, title, price string) int64 {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/books", s.adminToken, map[string]any{
		"title":        title,
		"author":       "Author",
		"price":        price,
		"availability": 10,
		"category":     "Fiction",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var book struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &book)
	return book.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), target), rec.Body.String())
}

type problem struct {
	Type   string `json:"type"`
	Status int    `json:"status"`
}

func problemOf(t *testing.T, rec *httptest.ResponseRecorder) problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p problem
	decode(t, rec, &p)
	return p
}

type orderBody struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId"`
	Status     string `json:"status"`
	TotalPrice string `json:"totalPrice"`
	Items      []struct {
		BookID   int64  `json:"bookId"`
		Price    string `json:"price"`
		Quantity int    `json:"quantity"`
		SubTotal string `json:"subTotal"`
	} `json:"items"`
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	s := newServer(t)
	_, token := s.register(t, "reader")
	body := map[string]any{"title": "T", "author": "A", "price": "1.00", "category": "C"}

	rec := s.do(t, http.MethodPost, "/books", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/books", token, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/books", "not-a-session", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	id := s.book(t, "Dune", "9.99")
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/books/%d", id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/books/999", "", nil)
	assert.Equal(t, "/problems/item-not-found", problemOf(t, rec).Type)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrderDrainsCart(t *testing.T) {
	s := newServer(t)
	userID, token := s.register(t, "alice")
	first := s.book(t, "First", "10.00")
	second := s.book(t, "Second", "5.50")

	rec := s.do(t, http.MethodPost, "/users/me/shopping-cart/items", token, map[string]any{"bookId": first, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/users/me/shopping-cart/items", token, map[string]any{"bookId": second, "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/users/me/orders", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order orderBody
	decode(t, rec, &order)
	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, "PENDING", order.Status)
	assert.Equal(t, "25.50", order.TotalPrice)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "20.00", order.Items[0].SubTotal)

	rec = s.do(t, http.MethodGet, "/users/me/shopping-cart/items", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page PageResponse[json.RawMessage]
	decode(t, rec, &page)
	assert.Empty(t, page.Content)
	assert.EqualValues(t, 0, page.TotalElements)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/users/me/orders/%d", order.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/users/me/orders", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "/problems/empty-cart", problemOf(t, rec).Type)
}

func TestPlaceOrderReplaysIdempotencyKey(t *testing.T) {
	s := newServer(t)
	_, token := s.register(t, "bob")
	book := s.book(t, "Book", "3.00")
	rec := s.do(t, http.MethodPost, "/users/me/shopping-cart/items", token, map[string]any{"bookId": book, "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	var first, second orderBody
	rec = s.do(t, http.MethodPost, "/users/me/orders", token, nil, HeaderIdempotencyKey, "checkout-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &first)
	rec = s.do(t, http.MethodPost, "/users/me/orders", token, nil, HeaderIdempotencyKey, "checkout-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &second)
	assert.Equal(t, first.ID, second.ID)
}

func TestOrderStatusLifecycle(t *testing.T) {
	s := newServer(t)
	_, token := s.register(t, "carol")
	book := s.book(t, "Book", "4.00")
	s.do(t, http.MethodPost, "/users/me/shopping-cart/items", token, map[string]any{"bookId": book, "quantity": 1})
	rec := s.do(t, http.MethodPost, "/users/me/orders", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var order orderBody
	decode(t, rec, &order)
	path := fmt.Sprintf("/orders/%d", order.ID)

	rec = s.do(t, http.MethodPut, path, token, map[string]string{"status": "SHIPPED"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, path, s.adminToken, map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &order)
	assert.Equal(t, "SHIPPED", order.Status)

	rec = s.do(t, http.MethodPut, path, s.adminToken, map[string]string{"status": "PENDING"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "/problems/invalid-status-transition", problemOf(t, rec).Type)

	rec = s.do(t, http.MethodPut, path, s.adminToken, map[string]string{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "/problems/invalid-status", problemOf(t, rec).Type)

	rec = s.do(t, http.MethodPut, "/orders/4242", s.adminToken, map[string]string{"status": "SHIPPED"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/problems/order-not-found", problemOf(t, rec).Type)
}

func TestOrdersAreHiddenFromOtherUsers(t *testing.T) {
	s := newServer(t)
	ownerID, owner := s.register(t, "owner")
	_, other := s.register(t, "other")
	book := s.book(t, "Book", "1.00")
	s.do(t, http.MethodPost, "/users/me/shopping-cart/items", owner, map[string]any{"bookId": book, "quantity": 1})
	rec := s.do(t, http.MethodPost, "/users/me/orders", owner, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var order orderBody
	decode(t, rec, &order)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/users/me/orders/%d", order.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/admin/users/%d/orders", ownerID), s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page PageResponse[orderBody]
	decode(t, rec, &page)
	require.Len(t, page.Content, 1)
	assert.Equal(t, order.ID, page.Content[0].ID)
}

func TestUpdateCartLine(t *testing.T) {
	s := newServer(t)
	_, token := s.register(t, "dave")
	book := s.book(t, "Book", "2.00")
	rec := s.do(t, http.MethodPost, "/users/me/shopping-cart/items", token, map[string]any{"bookId": book, "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	var line struct {
		ID       int64 `json:"id"`
		Quantity int   `json:"quantity"`
	}
	decode(t, rec, &line)
	path := fmt.Sprintf("/users/me/shopping-cart/items/%d", line.ID)

	rec = s.do(t, http.MethodPut, path, token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, path, token, map[string]any{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "/problems/invalid-quantity", problemOf(t, rec).Type)

	rec = s.do(t, http.MethodPut, path, token, map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &line)
	assert.Equal(t, 5, line.Quantity)

	rec = s.do(t, http.MethodPut, path, token, map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/problems/cart-line-not-found", problemOf(t, rec).Type)
}

func TestListRejectsMalformedPaging(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/books?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for i := 0; i < 3; i++ {
		s.book(t, fmt.Sprintf("Book %d", i), "1.00")
	}
	rec = s.do(t, http.MethodGet, "/books?page=1&size=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page PageResponse[json.RawMessage]
	decode(t, rec, &page)
	assert.Len(t, page.Content, 1)
	assert.Equal(t, 1, page.Page)
	assert.EqualValues(t, 3, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
}

func TestFavouritesRejectDuplicates(t *testing.T) {
	s := newServer(t)
	_, token := s.register(t, "erin")
	book := s.book(t, "Book", "1.00")

	rec := s.do(t, http.MethodPost, "/users/me/favourite-books", token, map[string]any{"bookId": book})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/users/me/favourite-books", token, map[string]any{"bookId": book})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/users/me/favourite-books/%d", book), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/users/me/favourite-books/%d", book), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newServer(t)
	_, token := s.register(t, "frank")
	rec := s.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type userBody struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
}

func TestUpdateCurrentUser(t *testing.T) {
	s := newServer(t)
	_, token := s.register(t, "grace")

	rec := s.do(t, http.MethodPut, "/users/me", token, map[string]any{"firstName": "Grace", "password": "new-password-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user userBody
	decode(t, rec, &user)
	assert.Equal(t, "Grace", user.FirstName)
	assert.Equal(t, "grace@example.com", user.Email)
	s.login(t, "grace", "new-password-1")

	rec = s.do(t, http.MethodPut, "/users/me", token, map[string]any{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "/problems/validation-error", problemOf(t, rec).Type)
}

func TestDeleteCurrentUserKeepsOrders(t *testing.T) {
	s := newServer(t)
	userID, token := s.register(t, "heidi")
	book := s.book(t, "Book", "2.00")
	s.do(t, http.MethodPost, "/users/me/shopping-cart/items", token, map[string]any{"bookId": book, "quantity": 1})
	rec := s.do(t, http.MethodPost, "/users/me/orders", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order orderBody
	decode(t, rec, &order)
	s.do(t, http.MethodPost, "/users/me/shopping-cart/items", token, map[string]any{"bookId": book, "quantity": 3})
	rec = s.do(t, http.MethodPost, "/users/me/favourite-books", token, map[string]any{"bookId": book})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodDelete, "/users/me", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/admin/users/%d", userID), s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/problems/user-not-found", problemOf(t, rec).Type)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &order)
	assert.Equal(t, userID, order.UserID)

	// The username can be registered again and starts with an empty cart.
	_, token = s.register(t, "heidi")
	rec = s.do(t, http.MethodGet, "/users/me/shopping-cart/items", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page PageResponse[json.RawMessage]
	decode(t, rec, &page)
	assert.Empty(t, page.Content)
}

func TestAdminManagesUsers(t *testing.T) {
	s := newServer(t)
	userID, token := s.register(t, "ivan")

	rec := s.do(t, http.MethodGet, "/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/users?size=10", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page PageResponse[userBody]
	decode(t, rec, &page)
	assert.EqualValues(t, 2, page.TotalElements)

	path := fmt.Sprintf("/admin/users/%d", userID)
	rec = s.do(t, http.MethodPut, path, s.adminToken, map[string]any{"email": "ivan@books.test"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user userBody
	decode(t, rec, &user)
	assert.Equal(t, "ivan@books.test", user.Email)

	rec = s.do(t, http.MethodDelete, path, s.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, path, s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
