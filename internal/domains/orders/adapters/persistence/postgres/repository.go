package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-gin-bookstore/internal/platform/postgres"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders and their frozen lines in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID         int64           `gorm:"primaryKey;column:id"`
	UserID     int64           `gorm:"column:user_id"`
	Status     string          `gorm:"column:status"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(14,2)"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type lineRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id"`
	Position  int             `gorm:"column:position"`
	BookID    int64           `gorm:"column:book_id"`
	Title     string          `gorm:"column:title"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Quantity  int             `gorm:"column:quantity"`
}

func (lineRecord) TableName() string { return "order_lines" }

// Create inserts the header and its lines. Run it inside a unit of work so a
// failing line insert does not leave a header behind.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	db := platformpostgres.Conn(ctx, r.db)
	header := orderRecord{
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalPrice: order.Total,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	if err := db.Create(&header).Error; err != nil {
		return nil, err
	}
	lines := make([]lineRecord, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, lineRecord{
			OrderID:   header.ID,
			Position:  line.Position,
			BookID:    line.BookID,
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	if len(lines) > 0 {
		if err := db.Create(&lines).Error; err != nil {
			return nil, err
		}
	}
	return toDomain(header, lines), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate locks the order row FOR UPDATE.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id int64, lock bool) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := platformpostgres.Conn(ctx, r.db)
	query := db
	if lock {
		query = query.Clauses(platformpostgres.ForUpdate())
	}
	var header orderRecord
	if err := query.First(&header, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var lines []lineRecord
	if err := db.Where("order_id = ?", id).Order("position").Find(&lines).Error; err != nil {
		return nil, err
	}
	return toDomain(header, lines), nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.Status, updatedAt time.Time) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Model(&orderRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": updatedAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, page pagination.Request) (pagination.Page[*domain.Order], error) {
	return r.list(ctx, page, "user_id = ?", userID)
}

func (r *Repository) List(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Order], error) {
	return r.list(ctx, page, "")
}

// list pages through orders newest first and loads the lines of the page in one query.
func (r *Repository) list(ctx context.Context, page pagination.Request, query string, args ...any) (pagination.Page[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return pagination.Page[*domain.Order]{}, err
	}
	db := platformpostgres.Conn(ctx, r.db)
	scoped := func() *gorm.DB {
		q := db.Model(&orderRecord{})
		if query != "" {
			q = q.Where(query, args...)
		}
		return q
	}
	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return pagination.Page[*domain.Order]{}, err
	}
	var headers []orderRecord
	if err := scoped().Order("id DESC").Offset(page.Offset()).Limit(page.Limit()).Find(&headers).Error; err != nil {
		return pagination.Page[*domain.Order]{}, err
	}
	ids := make([]int64, 0, len(headers))
	for _, h := range headers {
		ids = append(ids, h.ID)
	}
	linesByOrder := map[int64][]lineRecord{}
	if len(ids) > 0 {
		var lines []lineRecord
		if err := db.Where("order_id IN ?", ids).Order("order_id, position").Find(&lines).Error; err != nil {
			return pagination.Page[*domain.Order]{}, err
		}
		for _, line := range lines {
			linesByOrder[line.OrderID] = append(linesByOrder[line.OrderID], line)
		}
	}
	orders := make([]*domain.Order, 0, len(headers))
	for _, h := range headers {
		orders = append(orders, toDomain(h, linesByOrder[h.ID]))
	}
	return pagination.New(orders, page, total), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toDomain(header orderRecord, lines []lineRecord) *domain.Order {
	order := &domain.Order{
		ID:        header.ID,
		UserID:    header.UserID,
		Status:    domain.Status(header.Status),
		Total:     header.TotalPrice,
		CreatedAt: header.CreatedAt,
		UpdatedAt: header.UpdatedAt,
		Lines:     make([]domain.Line, 0, len(lines)),
	}
	for _, l := range lines {
		order.Lines = append(order.Lines, domain.Line{
			ID:        l.ID,
			OrderID:   l.OrderID,
			Position:  l.Position,
			BookID:    l.BookID,
			Title:     l.Title,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return order
}
