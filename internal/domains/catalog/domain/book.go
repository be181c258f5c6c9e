package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTitle           = errors.New("book title is required")
	ErrEmptyAuthor          = errors.New("book author is required")
	ErrEmptyCategory        = errors.New("book category is required")
	ErrNegativePrice        = errors.New("book price must not be negative")
	ErrPricePrecision       = errors.New("book price must have at most two decimal places")
	ErrNegativeAvailability = errors.New("book availability must not be negative")
)

// Book is a purchasable catalog item.
type Book struct {
	ID           int64
	Title        string
	Author       string
	Description  string
	Price        decimal.Decimal
	Availability int
	Category     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Details carries the mutable attributes of a book.
type Details struct {
	Title        string
	Author       string
	Description  string
	Price        decimal.Decimal
	Availability int
	Category     string
}

// NewBook validates details and builds a book without an identifier.
func NewBook(details Details) (*Book, error) {
	book := &Book{}
	if err := book.Apply(details); err != nil {
		return nil, err
	}
	return book, nil
}

// Apply replaces the book attributes after validating them.
func (b *Book) Apply(details Details) error {
	details.Title = strings.TrimSpace(details.Title)
	details.Author = strings.TrimSpace(details.Author)
	details.Category = strings.ToUpper(strings.TrimSpace(details.Category))
	details.Description = strings.TrimSpace(details.Description)
	if err := details.validate(); err != nil {
		return err
	}
	b.Title = details.Title
	b.Author = details.Author
	b.Description = details.Description
	b.Price = details.Price
	b.Availability = details.Availability
	b.Category = details.Category
	return nil
}

// Validate re-checks invariants before persistence.
func (b *Book) Validate() error {
	return Details{
		Title:        b.Title,
		Author:       b.Author,
		Description:  b.Description,
		Price:        b.Price,
		Availability: b.Availability,
		Category:     b.Category,
	}.validate()
}

func (d Details) validate() error {
	if d.Title == "" {
		return ErrEmptyTitle
	}
	if d.Author == "" {
		return ErrEmptyAuthor
	}
	if d.Category == "" {
		return ErrEmptyCategory
	}
	if d.Price.IsNegative() {
		return ErrNegativePrice
	}
	if !d.Price.Equal(d.Price.Round(2)) {
		return ErrPricePrecision
	}
	if d.Availability < 0 {
		return ErrNegativeAvailability
	}
	return nil
}
