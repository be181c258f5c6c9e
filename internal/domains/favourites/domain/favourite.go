package domain

import (
	"time"

	catalogdomain "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
)

// Favourite marks a book the user wants to keep an eye on.
type Favourite struct {
	ID        int64
	UserID    int64
	BookID    int64
	CreatedAt time.Time
	// Book is filled in by the service when listing.
	Book *catalogdomain.Book
}
