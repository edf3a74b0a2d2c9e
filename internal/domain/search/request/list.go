package request

import (
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/page"
)

// ListParams are the raw inputs to NewList.
// Either ItemTypes (multi-type listing) or ItemType (single-type listing) is set.
type ListParams struct {
	ItemTypes []string
	ItemType  string
	Facets    []string
	Instance  string
	Page      page.Params
}

// List is a validated faceted listing request.
type List struct {
	itemTypes []string
	single    bool
	facets    []string
	instance  string
	window    page.Window
}

// NewList validates listing parameters. A single-type listing without facets
// lists item ids.
func NewList(p ListParams) (List, error) {
	single := strings.TrimSpace(p.ItemType) != ""
	if single && len(p.ItemTypes) > 0 {
		return List{}, domain.Invalid(domain.ErrInvalidSyntax, "itemType and itemTypes are mutually exclusive")
	}
	var (
		types []string
		err   error
	)
	if single {
		types = []string{strings.TrimSpace(p.ItemType)}
	} else {
		if types, err = cleanValues("itemType", p.ItemTypes, MaxFields); err != nil {
			return List{}, err
		}
		if len(types) == 0 {
			return List{}, domain.Invalid(domain.ErrInvalidSyntax, "at least one itemType is required")
		}
	}

	facets, err := cleanFields("filter", p.Facets)
	if err != nil {
		return List{}, err
	}
	if len(facets) == 0 {
		if !single {
			return List{}, domain.Invalid(domain.ErrInvalidSyntax, "filter is required for multi-type listing")
		}
		facets = []string{domain.FieldID}
	}

	window, err := page.Resolve(p.Page)
	if err != nil {
		return List{}, err
	}
	return List{
		itemTypes: types,
		single:    single,
		facets:    facets,
		instance:  strings.TrimSpace(p.Instance),
		window:    window,
	}, nil
}

// ItemTypes returns the listed item categories.
func (l *List) ItemTypes() []string { return l.itemTypes }

// IsSingleType reports whether exactly one category was addressed by path.
func (l *List) IsSingleType() bool { return l.single }

// Facets returns the fields to aggregate on.
func (l *List) Facets() []string { return l.facets }

// Instance returns the instance scope.
func (l *List) Instance() string { return l.instance }

// Window returns the resolved window; Limit bounds the bucket count.
func (l *List) Window() page.Window { return l.window }
