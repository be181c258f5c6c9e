package bookstoreserver

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
	"github.com/Apurer/go-gin-bookstore/internal/shared/identity"
	"github.com/Apurer/go-gin-bookstore/internal/shared/pagination"
)

// Paging holds the page size policy applied to list endpoints.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPaging mirrors the pagination package defaults.
var DefaultPaging = Paging{DefaultSize: pagination.DefaultSize, MaxSize: pagination.MaxSize}

// PageResponse is the JSON envelope of a paginated result.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func toPageResponse[T, U any](page pagination.Page[T], fn func(T) U) PageResponse[U] {
	mapped := pagination.Map(page, fn)
	return PageResponse[U]{
		Content:       mapped.Items,
		Page:          mapped.Number,
		Size:          mapped.Size,
		TotalElements: mapped.TotalItems,
		TotalPages:    mapped.TotalPages,
	}
}

// parsePage reads the zero-based page and size query parameters.
func (p Paging) parsePage(c *gin.Context) (pagination.Request, bool) {
	var req pagination.Request
	for _, param := range []struct {
		name   string
		target *int
	}{{"page", &req.Page}, {"size", &req.Size}} {
		raw := c.Query(param.name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("%s must be a non-negative integer", param.name)))
			return pagination.Request{}, false
		}
		*param.target = value
	}
	return req.NormalizeWith(p.DefaultSize, p.MaxSize), true
}

// parseIDParam reads a positive int64 path parameter.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("%s must be a positive integer", name)))
		return 0, false
	}
	return id, true
}

// caller returns the identity installed by the authentication middleware.
func caller(c *gin.Context) (identity.Identity, bool) {
	id, ok := identity.FromContext(c.Request.Context())
	if !ok {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail("authentication required"))
		return identity.Identity{}, false
	}
	return id, true
}

func bindJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return false
	}
	return true
}
