package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	platformpostgres "github.com/Apurer/go-gin-bookstore/internal/platform/postgres"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists books in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type bookRecord struct {
	ID           int64           `gorm:"primaryKey;column:id"`
	Title        string          `gorm:"column:title"`
	Author       string          `gorm:"column:author"`
	Description  string          `gorm:"column:description"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Availability int             `gorm:"column:availability"`
	Category     string          `gorm:"column:category"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (bookRecord) TableName() string { return "books" }

// Save inserts a new book or updates an existing one.
func (r *Repository) Save(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if book == nil {
		return nil, errors.New("book is nil")
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(book)
	db := platformpostgres.Conn(ctx, r.db)
	if record.ID == 0 {
		if err := db.Create(&record).Error; err != nil {
			return nil, err
		}
		return r.GetByID(ctx, record.ID)
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":        record.Title,
			"author":       record.Author,
			"description":  record.Description,
			"price":        record.Price,
			"availability": record.Availability,
			"category":     record.Category,
			"updated_at":   gorm.Expr("NOW()"),
		}),
	}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a book by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record bookRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Delete removes a book by identifier.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Delete(&bookRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns one page of books ordered by identifier.
func (r *Repository) List(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Book], error) {
	if err := r.ensureDB(); err != nil {
		return pagination.Page[*domain.Book]{}, err
	}
	db := platformpostgres.Conn(ctx, r.db)
	var total int64
	if err := db.Model(&bookRecord{}).Count(&total).Error; err != nil {
		return pagination.Page[*domain.Book]{}, err
	}
	var records []bookRecord
	if err := db.Order("id").Offset(page.Offset()).Limit(page.Limit()).Find(&records).Error; err != nil {
		return pagination.Page[*domain.Book]{}, err
	}
	books := make([]*domain.Book, 0, len(records))
	for i := range records {
		books = append(books, records[i].toDomain())
	}
	return pagination.New(books, page, total), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres book repository not configured")
	}
	return nil
}

func toRecord(book *domain.Book) bookRecord {
	return bookRecord{
		ID:           book.ID,
		Title:        book.Title,
		Author:       book.Author,
		Description:  book.Description,
		Price:        book.Price,
		Availability: book.Availability,
		Category:     book.Category,
	}
}

func (r bookRecord) toDomain() *domain.Book {
	return &domain.Book{
		ID:           r.ID,
		Title:        r.Title,
		Author:       r.Author,
		Description:  r.Description,
		Price:        r.Price,
		Availability: r.Availability,
		Category:     r.Category,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
