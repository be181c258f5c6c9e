package mapper

import (
	"time"

	catalogmapper "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/http/mapper"
	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/domain"
)

// AddFavouriteRequest is the body of a favourite call.
type AddFavouriteRequest struct {
	BookID int64 `json:"bookId"`
}

// Favourite is the transport-layer shape of a favourite book.
type Favourite struct {
	ID        int64               `json:"id"`
	BookID    int64               `json:"bookId"`
	CreatedAt time.Time           `json:"createdAt"`
	Book      *catalogmapper.Book `json:"book,omitempty"`
}

func FromDomainFavourite(fav *domain.Favourite) Favourite {
	if fav == nil {
		return Favourite{}
	}
	out := Favourite{ID: fav.ID, BookID: fav.BookID, CreatedAt: fav.CreatedAt}
	if fav.Book != nil {
		book := catalogmapper.FromDomainBook(fav.Book)
		out.Book = &book
	}
	return out
}
