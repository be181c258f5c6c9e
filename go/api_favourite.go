package bookstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	favouritehttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/adapters/http/mapper"
	favouriteports "github.com/Apurer/go-gin-bookstore/internal/domains/favourites/ports"
)

// FavouriteAPI implements the favourite books section.
type FavouriteAPI struct {
	service favouriteports.Service
	paging  Paging
}

// NewFavouriteAPI wires dependencies.
func NewFavouriteAPI(service favouriteports.Service, paging Paging) FavouriteAPI {
	return FavouriteAPI{service: service, paging: paging}
}

// Post /users/me/favourite-books
// Mark a book as a favourite
func (api *FavouriteAPI) AddFavourite(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var payload favouritehttpmapper.AddFavouriteRequest
	if !bindJSON(c, &payload) {
		return
	}
	fav, err := api.service.AddFavourite(c.Request.Context(), id.UserID, payload.BookID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, favouritehttpmapper.FromDomainFavourite(fav))
}

// Get /users/me/favourite-books
func (api *FavouriteAPI) ListFavourites(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	api.list(c, id.UserID)
}

// Delete /users/me/favourite-books/:bookId
func (api *FavouriteAPI) RemoveFavourite(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	if err := api.service.RemoveFavourite(c.Request.Context(), id.UserID, bookID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /admin/users/:userId/favourite-books
func (api *FavouriteAPI) AdminListFavourites(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	api.list(c, userID)
}

func (api *FavouriteAPI) list(c *gin.Context, userID int64) {
	page, ok := api.paging.parsePage(c)
	if !ok {
		return
	}
	favs, err := api.service.ListFavourites(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(favs, favouritehttpmapper.FromDomainFavourite))
}
