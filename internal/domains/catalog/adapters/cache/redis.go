package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

const defaultTTL = 15 * time.Minute

// Repository is a read-through redis cache in front of another book repository.
// Single-book reads are cached; writes go to the inner repository and evict.
type Repository struct {
	inner   ports.Repository
	client  *redis.Client
	baseTTL time.Duration
	group   singleflight.Group
}

// NewRepository wraps inner with a redis cache.
func NewRepository(inner ports.Repository, client *redis.Client) *Repository {
	return &Repository{inner: inner, client: client, baseTTL: defaultTTL}
}

// WithTTL overrides the base expiry applied to cached books.
func (r *Repository) WithTTL(ttl time.Duration) *Repository {
	if ttl > 0 {
		r.baseTTL = ttl
	}
	return r
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	if book, err := r.get(ctx, id); err == nil {
		return book, nil
	}
	v, err, _ := r.group.Do(cacheKey(id), func() (any, error) {
		book, err := r.inner.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		// cache failures only cost a later miss
		_ = r.set(ctx, book)
		return book, nil
	})
	if err != nil {
		return nil, err
	}
	clone := *v.(*domain.Book)
	return &clone, nil
}

func (r *Repository) Save(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	saved, err := r.inner.Save(ctx, book)
	if err != nil {
		return nil, err
	}
	if err := r.evict(ctx, saved.ID); err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	return r.evict(ctx, id)
}

func (r *Repository) List(ctx context.Context, page pagination.Request) (pagination.Page[*domain.Book], error) {
	return r.inner.List(ctx, page)
}

type cachedBook struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	Availability int       `json:"availability"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (r *Repository) get(ctx context.Context, id int64) (*domain.Book, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var cached cachedBook
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("unmarshal book failed: %w", err)
	}
	return cached.toDomain()
}

func (r *Repository) set(ctx context.Context, book *domain.Book) error {
	data, err := json.Marshal(fromDomain(book))
	if err != nil {
		return fmt.Errorf("marshal book failed: %w", err)
	}
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, cacheKey(book.ID), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *Repository) evict(ctx context.Context, id int64) error {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// ErrCacheMiss reports a key absent from redis.
var ErrCacheMiss = errors.New("cache miss")

func cacheKey(id int64) string {
	return "book:" + strconv.FormatInt(id, 10)
}

func fromDomain(book *domain.Book) cachedBook {
	return cachedBook{
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

func (c cachedBook) toDomain() (*domain.Book, error) {
	price, err := decimal.NewFromString(c.Price)
	if err != nil {
		return nil, fmt.Errorf("parse cached price: %w", err)
	}
	return &domain.Book{
		ID:           c.ID,
		Title:        c.Title,
		Author:       c.Author,
		Description:  c.Description,
		Price:        price,
		Availability: c.Availability,
		Category:     c.Category,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}, nil
}
