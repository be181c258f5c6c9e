package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
)

// Book is the transport-layer shape of a catalog item.
type Book struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Description  string    `json:"description,omitempty"`
	Price        string    `json:"price"`
	Availability int       `json:"availability"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BookRequest is the body accepted when creating or replacing a book.
type BookRequest struct {
	Title        string          `json:"title"`
	Author       string          `json:"author"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Availability int             `json:"availability"`
	Category     string          `json:"category"`
}

// ToDetails converts a request body into domain details.
func ToDetails(req BookRequest) domain.Details {
	return domain.Details{
		Title:        req.Title,
		Author:       req.Author,
		Description:  req.Description,
		Price:        req.Price,
		Availability: req.Availability,
		Category:     req.Category,
	}
}

// FromDomainBook converts a domain book to the transport representation.
func FromDomainBook(book *domain.Book) Book {
	if book == nil {
		return Book{}
	}
	return Book{
		ID:           book.ID,
		Title:        book.Title,
		Author:       book.Author,
		Description:  book.Description,
		Price:        book.Price.StringFixed(2),
		Availability: book.Availability,
		Category:     book.Category,
		CreatedAt:    book.CreatedAt,
		UpdatedAt:    book.UpdatedAt,
	}
}
