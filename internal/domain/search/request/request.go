// Package request holds the canonical, validated search request model.
package request

import (
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/criterion"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/geo"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/page"
)

// Request limits.
const (
	// MaxQueryLength is the maximum allowed free-text query length.
	MaxQueryLength = 4096
	MaxCriteria    = 32
	MaxIDs         = 100
	MaxFields      = 64
)

// Text is the free-text sub-request.
type Text struct {
	Query        string
	Fuzzy        bool
	AutoComplete bool
	// BoostRecent re-ranks text matches by creation time.
	BoostRecent bool
}

// ResponseFilter is the response projection sub-request.
type ResponseFilter struct {
	Attributes []string
	Filters    []string
	CountAPI   bool
}

// SearchTypes records which search categories a request activates.
// It is derived from the sub-requests present, never supplied by the client.
type SearchTypes struct {
	Geo            bool
	Text           bool
	Criteria       bool
	ResponseFilter bool
}

// Any reports whether at least one category is active.
func (s SearchTypes) Any() bool {
	return s.Geo || s.Text || s.Criteria || s.ResponseFilter
}

// Params are the raw inputs to New. Nil sub-requests are inactive.
type Params struct {
	// Search is false for count-only requests.
	Search         bool
	// Fuzzy adds fuzzy variants to TERM criteria on text-like fields.
	Fuzzy          bool
	IDs            []string
	Facets         []string
	Text           *Text
	Criteria       []criterion.Criterion
	Geo            *geo.Params
	Instance       string
	ItemTypes      []string
	ResponseFilter *ResponseFilter
	Page           page.Params
	Sort           string
}

// Request is a validated search or count request. It is immutable once built.
type Request struct {
	search         bool
	fuzzy          bool
	types          SearchTypes
	ids            []string
	facets         []string
	text           Text
	criteria       []criterion.Criterion
	geo            geo.Params
	instance       string
	itemTypes      []string
	responseFilter ResponseFilter
	window         page.Window
	sort           []page.Sort
}

// New validates p and resolves pagination and sort.
func New(p Params) (Request, error) {
	if len(p.Criteria) > MaxCriteria {
		return Request{}, domain.Invalid(domain.ErrInvalidSyntax,
			"too many search criteria (max %d), got %d", MaxCriteria, len(p.Criteria))
	}
	if p.Text != nil && len(p.Text.Query) > MaxQueryLength {
		return Request{}, domain.Invalid(domain.ErrBadTextQuery, "query too long (max %d chars)", MaxQueryLength)
	}
	ids, err := cleanValues("id", p.IDs, MaxIDs)
	if err != nil {
		return Request{}, err
	}
	itemTypes, err := cleanValues("itemType", p.ItemTypes, MaxFields)
	if err != nil {
		return Request{}, err
	}
	facets, err := cleanFields("filter", p.Facets)
	if err != nil {
		return Request{}, err
	}

	window, err := page.Resolve(p.Page)
	if err != nil {
		return Request{}, err
	}
	sort, err := page.ParseSort(p.Sort)
	if err != nil {
		return Request{}, err
	}

	r := Request{
		search:    p.Search,
		fuzzy:     p.Fuzzy || (p.Text != nil && p.Text.Fuzzy),
		ids:       ids,
		facets:    facets,
		criteria:  append([]criterion.Criterion(nil), p.Criteria...),
		instance:  strings.TrimSpace(p.Instance),
		itemTypes: itemTypes,
		window:    window,
		sort:      sort,
	}
	if p.Text != nil {
		r.types.Text = true
		r.text = *p.Text
	}
	if p.Geo != nil {
		r.types.Geo = true
		r.geo = *p.Geo
	}
	if len(p.Criteria) > 0 {
		r.types.Criteria = true
	}
	if p.ResponseFilter != nil {
		rf := *p.ResponseFilter
		if rf.Attributes, err = cleanFields("attribute", rf.Attributes); err != nil {
			return Request{}, err
		}
		if rf.Filters, err = cleanFields("filter", rf.Filters); err != nil {
			return Request{}, err
		}
		r.types.ResponseFilter = true
		r.responseFilter = rf
	}
	return r, nil
}

// cleanValues trims values and rejects blanks.
func cleanValues(name string, values []string, limit int) ([]string, error) {
	if len(values) > limit {
		return nil, domain.Invalid(domain.ErrInvalidSyntax, "too many %s values (max %d), got %d", name, limit, len(values))
	}
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, domain.Invalid(domain.ErrInvalidPropertyValue, "empty %s value", name)
		}
		out[i] = v
	}
	return out, nil
}

// cleanFields trims attribute paths and rejects invalid names.
func cleanFields(name string, fields []string) ([]string, error) {
	out, err := cleanValues(name, fields, MaxFields)
	if err != nil {
		return nil, err
	}
	for _, f := range out {
		if !domain.IsValidFieldName(f) {
			return nil, domain.Invalid(domain.ErrInvalidPropertyValue, "invalid %s field %q", name, f)
		}
	}
	return out, nil
}

// IsSearch reports whether hits are requested; false for count-only requests.
func (r *Request) IsSearch() bool { return r.search }

// Fuzzy reports whether criteria matching is fuzzy, either directly or through the text sub-request.
func (r *Request) Fuzzy() bool { return r.fuzzy }

// SearchTypes returns the active search categories.
func (r *Request) SearchTypes() SearchTypes { return r.types }

// IDs returns the direct-lookup document ids.
func (r *Request) IDs() []string { return r.ids }

// Facets returns the field names to aggregate on.
func (r *Request) Facets() []string { return r.facets }

// Text returns the free-text sub-request; valid when SearchTypes().Text is set.
func (r *Request) Text() Text { return r.text }

// Criteria returns the attribute criteria in request order.
func (r *Request) Criteria() []criterion.Criterion { return r.criteria }

// Geo returns the geo sub-request; valid when SearchTypes().Geo is set.
func (r *Request) Geo() geo.Params { return r.geo }

// Instance returns the instance scope, empty when unscoped.
func (r *Request) Instance() string { return r.instance }

// ItemTypes returns the item-type scope.
func (r *Request) ItemTypes() []string { return r.itemTypes }

// ResponseFilter returns the projection sub-request; valid when SearchTypes().ResponseFilter is set.
func (r *Request) ResponseFilter() ResponseFilter { return r.responseFilter }

// Window returns the resolved pagination window.
func (r *Request) Window() page.Window { return r.window }

// Sort returns the resolved sort keys.
func (r *Request) Sort() []page.Sort { return r.sort }
