// Package pagination carries the page/limit request parameters and the
// {data, meta} envelope returned by every paginated endpoint.
package pagination

// Params normalizes page/limit query values.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps the parameters: page >= 1, 1 <= limit <= 100, with
// defaultLimit applied when the caller sent none.
func Normalize(page, limit, defaultLimit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return Params{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes the full result set a page was cut from.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// Page is the {data, meta} envelope.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// NewPage assembles the envelope for one page of items.
func NewPage[T any](items []T, total int64, params Params) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := total / int64(params.Limit)
	if total%int64(params.Limit) != 0 {
		totalPages++
	}
	return &Page[T]{
		Data: items,
		Meta: Meta{Total: total, Page: params.Page, Limit: params.Limit, TotalPages: totalPages},
	}
}
