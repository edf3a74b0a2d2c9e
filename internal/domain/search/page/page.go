// Package page resolves pagination windows and sort specs.
package page

import (
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
)

// Pagination and sort limits.
const (
	// MaxWindow bounds limit+offset, matching the backend's max result window.
	MaxWindow = 10000
	// MaxSortFields is the maximum number of sort pairs in one request.
	MaxSortFields = 3
	// DefaultPageSize applies when a page is requested without a size.
	DefaultPageSize = 20
)

// Params carries the raw pagination parameters; nil means not supplied.
// Limit/Offset take precedence over Size/Page. Page is 1-based.
type Params struct {
	Limit  *int
	Offset *int
	Size   *int
	Page   *int
}

// Window is a resolved result window.
type Window struct {
	Limit  int
	Offset int
}

// Resolve computes the effective window. An unspecified limit defaults to
// MaxWindow minus the offset. The resolved limit+offset must lie in [1, MaxWindow].
func Resolve(p Params) (Window, error) {
	var w Window
	switch {
	case p.Limit != nil || p.Offset != nil:
		if p.Offset != nil {
			w.Offset = *p.Offset
		}
		if p.Limit != nil {
			w.Limit = *p.Limit
		} else {
			w.Limit = MaxWindow - w.Offset
		}
	case p.Size != nil || p.Page != nil:
		size := DefaultPageSize
		if p.Size != nil {
			size = *p.Size
		}
		pageNum := 1
		if p.Page != nil {
			pageNum = *p.Page
		}
		if pageNum < 1 {
			return Window{}, domain.Invalid(domain.ErrInvalidSyntax, "page must be at least 1, got %d", pageNum)
		}
		if size > 0 && pageNum-1 > (MaxWindow-size)/size {
			return Window{}, domain.Invalid(domain.ErrInvalidSyntax,
				"page %d with size %d exceeds the %d result window", pageNum, size, MaxWindow)
		}
		w.Limit = size
		w.Offset = (pageNum - 1) * size
	default:
		w.Limit = MaxWindow
	}

	if w.Limit < 0 || w.Offset < 0 {
		return Window{}, domain.Invalid(domain.ErrInvalidSyntax, "limit and offset must not be negative")
	}
	if sum := w.Limit + w.Offset; sum < 1 || sum > MaxWindow {
		return Window{}, domain.Invalid(domain.ErrInvalidSyntax,
			"limit+offset must be between 1 and %d, got %d", MaxWindow, sum)
	}
	return w, nil
}

// Order is a sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ScoreField sorts by relevance score.
const ScoreField = "_score"

// Sort is one sort key.
type Sort struct {
	Field string
	Order Order
}

// DefaultSort orders by creation time, newest first.
func DefaultSort() []Sort {
	return []Sort{{Field: domain.FieldCreatedAt, Order: Desc}}
}

// ParseSort parses "field:direction" pairs separated by ';'. A bare field sorts
// ascending. Fields get the keyword suffix unless they already carry it or are
// the creation timestamp or the relevance score. An empty param yields DefaultSort.
func ParseSort(param string) ([]Sort, error) {
	var parts []string
	for _, p := range strings.Split(param, ";") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return DefaultSort(), nil
	}
	if len(parts) > MaxSortFields {
		return nil, domain.Invalid(domain.ErrInvalidSyntax,
			"max %d sort fields allowed, got %d", MaxSortFields, len(parts))
	}

	sorts := make([]Sort, 0, len(parts))
	for _, p := range parts {
		field, dir, hasDir := strings.Cut(p, ":")
		field = strings.TrimSpace(field)
		if !domain.IsValidFieldName(field) {
			return nil, domain.Invalid(domain.ErrInvalidPropertyValue, "invalid sort field %q", field)
		}
		order := Asc
		if hasDir {
			switch Order(strings.ToLower(strings.TrimSpace(dir))) {
			case Asc:
				order = Asc
			case Desc:
				order = Desc
			default:
				return nil, domain.Invalid(domain.ErrInvalidPropertyValue,
					"unknown sort direction %q for field %q", dir, field)
			}
		}
		if field != domain.FieldCreatedAt && field != ScoreField {
			field = domain.Keyword(field)
		}
		sorts = append(sorts, Sort{Field: field, Order: order})
	}
	return sorts, nil
}
