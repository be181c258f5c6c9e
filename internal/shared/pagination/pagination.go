// Package pagination provides page requests and page results for list queries.
package pagination

const (
	// DefaultSize applies when a request does not specify a page size.
	DefaultSize = 20
	// MaxSize caps the page size a caller may request.
	MaxSize = 100
)

// Request identifies a zero-based page of results.
type Request struct {
	Page int
	Size int
}

// Normalize clamps the request into a valid window using the package defaults.
func (r Request) Normalize() Request {
	return r.NormalizeWith(DefaultSize, MaxSize)
}

// NormalizeWith clamps the request using explicit defaults.
func (r Request) NormalizeWith(defaultSize, maxSize int) Request {
	if defaultSize <= 0 {
		defaultSize = DefaultSize
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = defaultSize
	}
	if r.Size > maxSize {
		r.Size = maxSize
	}
	return r
}

// Offset returns the number of items preceding the page.
func (r Request) Offset() int {
	r = r.sanitize()
	return r.Page * r.Size
}

// Limit returns the page size to query with.
func (r Request) Limit() int {
	return r.sanitize().Size
}

// sanitize repairs out-of-range values without applying the size cap.
func (r Request) sanitize() Request {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultSize
	}
	return r
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int64
	TotalPages int
}

// New assembles a page for the given request and total count.
func New[T any](items []T, req Request, total int64) Page[T] {
	req = req.sanitize()
	if items == nil {
		items = []T{}
	}
	pages := 0
	if total > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Items:      items,
		Number:     req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// Empty returns a page with no items.
func Empty[T any](req Request) Page[T] {
	return New[T](nil, req, 0)
}

// Slice cuts the requested page out of an in-memory ordered slice.
func Slice[T any](all []T, req Request) Page[T] {
	req = req.sanitize()
	total := int64(len(all))
	start := req.Offset()
	if start >= len(all) {
		return New[T](nil, req, total)
	}
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	return New(items, req, total)
}

// Map converts the items of a page while keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{
		Items:      items,
		Number:     p.Number,
		Size:       p.Size,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}
