package mapper

import (
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
)

// UpdateStatusRequest is the body of an administrative status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Order is the transport-layer shape of an order. Money is a fixed two
// decimal string.
type Order struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Status     string    `json:"status"`
	TotalPrice string    `json:"totalPrice"`
	OrderDate  time.Time `json:"orderDate"`
	Items      []Item    `json:"items"`
}

// Item is one frozen order line.
type Item struct {
	ID       int64  `json:"id"`
	BookID   int64  `json:"bookId"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	SubTotal string `json:"subTotal"`
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]Item, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, Item{
			ID:       line.ID,
			BookID:   line.BookID,
			Title:    line.Title,
			Price:    line.UnitPrice.StringFixed(2),
			Quantity: line.Quantity,
			SubTotal: line.Subtotal().StringFixed(2),
		})
	}
	return Order{
		ID:         order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalPrice: order.Total.StringFixed(2),
		OrderDate:  order.CreatedAt,
		Items:      items,
	}
}
