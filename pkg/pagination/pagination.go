package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the page size used when none is given.
	DefaultLimit = 10
	// MaxLimit caps any requested page size.
	MaxLimit = 100
)

// Params holds 1-indexed pagination parameters.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Normalize(1, DefaultLimit)
}

// Normalize clamps page to >= 1 and limit to 1..MaxLimit (0 or less means
// DefaultLimit). Page is also capped so Offset cannot overflow.
func Normalize(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// FromRequest extracts page and limit from the query string. Unparseable
// values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	page, limit := 1, DefaultLimit

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	return Normalize(page, limit)
}

// TotalPages returns ceil(total / limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Result wraps a paginated response.
type Result[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewResult creates a paginated result.
func NewResult[T any](items []T, total int, params Params) Result[T] {
	totalPages := TotalPages(total, params.Limit)
	return Result[T]{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// Slice pages an in-memory list. A page past the end yields no items.
func Slice[T any](all []T, params Params) Result[T] {
	start := params.Offset
	if start < 0 || start > len(all) {
		start = len(all)
	}
	end := start + params.Limit
	if end < start || end > len(all) {
		end = len(all)
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	return NewResult(items, len(all), params)
}
