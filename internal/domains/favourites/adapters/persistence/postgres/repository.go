package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/favourites/ports"
	platformpostgres "github.com/Apurer/go-gin-bookstore/internal/platform/postgres"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists favourites in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type favouriteRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	UserID    int64     `gorm:"column:user_id"`
	BookID    int64     `gorm:"column:book_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (favouriteRecord) TableName() string { return "favourite_books" }

func (r *Repository) Add(ctx context.Context, userID, bookID int64) (*domain.Favourite, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := favouriteRecord{UserID: userID, BookID: bookID}
	if err := platformpostgres.Conn(ctx, r.db).Create(&record).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err) {
			return nil, ports.ErrAlreadyFavourite
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Remove(ctx context.Context, userID, bookID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&favouriteRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) RemoveAllForUser(ctx context.Context, userID int64) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	result := platformpostgres.Conn(ctx, r.db).Where("user_id = ?", userID).Delete(&favouriteRecord{})
	return result.RowsAffected, result.Error
}

func (r *Repository) List(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Favourite], error) {
	if err := r.ensureDB(); err != nil {
		return pagination.Page[*domain.Favourite]{}, err
	}
	db := platformpostgres.Conn(ctx, r.db)
	var total int64
	if err := db.Model(&favouriteRecord{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return pagination.Page[*domain.Favourite]{}, err
	}
	var records []favouriteRecord
	if err := db.Where("user_id = ?", userID).Order("id").Offset(page.Offset()).Limit(page.Limit()).Find(&records).Error; err != nil {
		return pagination.Page[*domain.Favourite]{}, err
	}
	favs := make([]*domain.Favourite, 0, len(records))
	for i := range records {
		favs = append(favs, records[i].toDomain())
	}
	return pagination.New(favs, page, total), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres favourites repository not configured")
	}
	return nil
}

func (r *favouriteRecord) toDomain() *domain.Favourite {
	return &domain.Favourite{ID: r.ID, UserID: r.UserID, BookID: r.BookID, CreatedAt: r.CreatedAt}
}
