package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/cart/ports"
	platformpostgres "github.com/Apurer/go-gin-bookstore/internal/platform/postgres"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists carts and cart lines in PostgreSQL using GORM. Cart
// locks are row locks on carts and only last as long as the transaction
// carried by ctx.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type cartRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	UserID    int64     `gorm:"column:user_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartRecord) TableName() string { return "carts" }

type lineRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	CartID    int64     `gorm:"column:cart_id"`
	BookID    int64     `gorm:"column:book_id"`
	Quantity  int       `gorm:"column:quantity"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (lineRecord) TableName() string { return "cart_lines" }

// LockCart selects the user's cart FOR UPDATE.
func (r *Repository) LockCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	return r.findCart(ctx, userID, true)
}

// EnsureCart creates the user's cart when missing and then locks it.
func (r *Repository) EnsureCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := cartRecord{UserID: userID}
	if err := platformpostgres.Conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&record).Error; err != nil {
		return nil, err
	}
	return r.findCart(ctx, userID, true)
}

// FindCart loads the user's cart without locking it.
func (r *Repository) FindCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	return r.findCart(ctx, userID, false)
}

func (r *Repository) findCart(ctx context.Context, userID int64, lock bool) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := platformpostgres.Conn(ctx, r.db)
	if lock {
		db = db.Clauses(platformpostgres.ForUpdate())
	}
	var record cartRecord
	if err := db.First(&record, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrCartNotFound
		}
		return nil, err
	}
	return &domain.Cart{ID: record.ID, UserID: record.UserID, CreatedAt: record.CreatedAt}, nil
}

// DeleteCart removes the user's cart and its lines.
func (r *Repository) DeleteCart(ctx context.Context, userID int64) error {
	cart, err := r.findCart(ctx, userID, true)
	if errors.Is(err, ports.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	db := platformpostgres.Conn(ctx, r.db)
	if err := db.Where("cart_id = ?", cart.ID).Delete(&lineRecord{}).Error; err != nil {
		return err
	}
	return db.Delete(&cartRecord{}, cart.ID).Error
}

// GetLine loads a line of the given cart.
func (r *Repository) GetLine(ctx context.Context, cartID, lineID int64) (*domain.Line, error) {
	return r.firstLine(ctx, "id = ? AND cart_id = ?", lineID, cartID)
}

// FindLineByBook loads the cart's line for a book.
func (r *Repository) FindLineByBook(ctx context.Context, cartID, bookID int64) (*domain.Line, error) {
	return r.firstLine(ctx, "cart_id = ? AND book_id = ?", cartID, bookID)
}

func (r *Repository) firstLine(ctx context.Context, query string, args ...any) (*domain.Line, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record lineRecord
	if err := platformpostgres.Conn(ctx, r.db).Where(query, args...).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrLineNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// SaveLine inserts a new line or overwrites the quantity of an existing one.
func (r *Repository) SaveLine(ctx context.Context, line *domain.Line) (*domain.Line, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if line == nil {
		return nil, errors.New("line is nil")
	}
	if line.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	db := platformpostgres.Conn(ctx, r.db)
	if line.ID == 0 {
		record := lineRecord{CartID: line.CartID, BookID: line.BookID, Quantity: line.Quantity}
		if err := db.Create(&record).Error; err != nil {
			return nil, err
		}
		return record.toDomain(), nil
	}
	result := db.Model(&lineRecord{}).
		Where("id = ? AND cart_id = ?", line.ID, line.CartID).
		Updates(map[string]any{"quantity": line.Quantity, "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrLineNotFound
	}
	return r.GetLine(ctx, line.CartID, line.ID)
}

// DeleteLine removes one line of the cart.
func (r *Repository) DeleteLine(ctx context.Context, cartID, lineID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Where("id = ? AND cart_id = ?", lineID, cartID).Delete(&lineRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrLineNotFound
	}
	return nil
}

// ListLines returns one page of the cart's lines ordered by id.
func (r *Repository) ListLines(ctx context.Context, cartID int64, page pagination.Request) (pagination.Page[*domain.Line], error) {
	if err := r.ensureDB(); err != nil {
		return pagination.Page[*domain.Line]{}, err
	}
	db := platformpostgres.Conn(ctx, r.db)
	var total int64
	if err := db.Model(&lineRecord{}).Where("cart_id = ?", cartID).Count(&total).Error; err != nil {
		return pagination.Page[*domain.Line]{}, err
	}
	var records []lineRecord
	if err := db.Where("cart_id = ?", cartID).Order("id").Offset(page.Offset()).Limit(page.Limit()).Find(&records).Error; err != nil {
		return pagination.Page[*domain.Line]{}, err
	}
	return pagination.New(toDomainLines(records), page, total), nil
}

// AllLines returns every line of the cart ordered by id.
func (r *Repository) AllLines(ctx context.Context, cartID int64) ([]*domain.Line, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []lineRecord
	if err := platformpostgres.Conn(ctx, r.db).Where("cart_id = ?", cartID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainLines(records), nil
}

// DeleteLines removes the listed lines of the cart.
func (r *Repository) DeleteLines(ctx context.Context, cartID int64, lineIDs []int64) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	if len(lineIDs) == 0 {
		return 0, nil
	}
	result := platformpostgres.Conn(ctx, r.db).Where("cart_id = ? AND id IN ?", cartID, lineIDs).Delete(&lineRecord{})
	return result.RowsAffected, result.Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres cart repository not configured")
	}
	return nil
}

func toDomainLines(records []lineRecord) []*domain.Line {
	lines := make([]*domain.Line, 0, len(records))
	for i := range records {
		lines = append(lines, records[i].toDomain())
	}
	return lines
}

func (r lineRecord) toDomain() *domain.Line {
	return &domain.Line{
		ID:        r.ID,
		CartID:    r.CartID,
		BookID:    r.BookID,
		Quantity:  r.Quantity,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
