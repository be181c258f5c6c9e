package postgres

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-bookstore/internal/shared/tx"
)

var _ tx.Transactor = (*Transactor)(nil)

type txKey struct{}

// Transactor runs units of work inside a GORM transaction.
type Transactor struct {
	db *gorm.DB
}

// NewTransactor wires a Transactor over db. Caller manages DB lifecycle.
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx opens a transaction, or joins the one already carried by ctx.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	if t == nil || t.db == nil {
		return errors.New("postgres transactor not configured")
	}
	return t.db.WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, txDB))
	})
}

// Conn returns the transaction carried by ctx, or db when there is none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if txDB, ok := ctx.Value(txKey{}).(*gorm.DB); ok && txDB != nil {
		return txDB.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// ForUpdate locks the selected rows until the transaction ends.
func ForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// ForUpdateSkipLocked locks the selected rows, skipping rows held by others.
func ForUpdateSkipLocked() clause.Locking {
	return clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
