package bookstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cataloghttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
)

// BookAPI implements the catalog section.
type BookAPI struct {
	service catalogports.Service
	paging  Paging
}

// NewBookAPI wires dependencies.
func NewBookAPI(service catalogports.Service, paging Paging) BookAPI {
	return BookAPI{service: service, paging: paging}
}

// Post /books
// Add a book to the catalog
func (api *BookAPI) CreateBook(c *gin.Context) {
	var payload cataloghttpmapper.BookRequest
	if !bindJSON(c, &payload) {
		return
	}
	book, err := api.service.CreateBook(c.Request.Context(), cataloghttpmapper.ToDetails(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cataloghttpmapper.FromDomainBook(book))
}

// Put /books/:bookId
// Replace the details of a book
func (api *BookAPI) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	var payload cataloghttpmapper.BookRequest
	if !bindJSON(c, &payload) {
		return
	}
	book, err := api.service.UpdateBook(c.Request.Context(), id, cataloghttpmapper.ToDetails(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainBook(book))
}

// Get /books/:bookId
// Find a book by ID
func (api *BookAPI) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	book, err := api.service.GetBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainBook(book))
}

// Get /books
// Browse the catalog
func (api *BookAPI) ListBooks(c *gin.Context) {
	page, ok := api.paging.parsePage(c)
	if !ok {
		return
	}
	books, err := api.service.ListBooks(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(books, cataloghttpmapper.FromDomainBook))
}

// Delete /books/:bookId
// Remove a book from the catalog
func (api *BookAPI) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	if err := api.service.DeleteBook(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
