package search

import (
	"fmt"
	"maps"
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/access"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/aggregation"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/mode"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/request"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/result"
)

// ParentInfoFields are returned by a parent-object lookup.
var ParentInfoFields = []string{
	domain.FieldID, domain.FieldType, domain.FieldLabel, domain.FieldInstance, domain.FieldProvider,
}

// CompileList builds a faceted listing: one Terms aggregation per facet and no hits.
func CompileList(l *request.List, ac access.Context) (*compiled.Query, error) {
	a := newAssembly()
	if err := decorateAccess(a, ac); err != nil {
		return nil, err
	}
	if err := decorateScope(a, l.Instance(), l.ItemTypes()); err != nil {
		return nil, err
	}
	if err := decorateUploadExclusion(a, l.ItemTypes()); err != nil {
		return nil, err
	}
	root, err := normalize(a.clauses.Bool())
	if err != nil {
		return nil, err
	}
	return &compiled.Query{
		Bool:         root.(query.Bool),
		Aggregations: facetAggregations(l.Facets(), l.Window().Limit),
	}, nil
}

// CompileParentInfo builds a single-document lookup restricted to ParentInfoFields.
func CompileParentInfo(id string, ac access.Context) (*compiled.Query, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.Invalid(domain.ErrInvalidSyntax, "id is required")
	}
	a := newAssembly()
	if err := decorateIDs(a, []string{id}); err != nil {
		return nil, err
	}
	if err := decorateAccess(a, ac); err != nil {
		return nil, err
	}
	return &compiled.Query{
		Bool:       a.clauses.Bool(),
		Projection: compiled.Projection{Include: append([]string(nil), ParentInfoFields...)},
		Limit:      1,
	}, nil
}

// facetAggregations names each Terms aggregation after its facet field.
func facetAggregations(facets []string, size int) []aggregation.Named {
	if len(facets) == 0 {
		return nil
	}
	out := make([]aggregation.Named, 0, len(facets))
	for _, f := range facets {
		field := f
		if f != domain.FieldCreatedAt {
			field = domain.Keyword(f)
		}
		out = append(out, aggregation.Named{
			Name: f,
			Node: aggregation.Terms{Field: field, Size: size},
		})
	}
	return out
}

// FlattenAggregations converts a raw aggregation response according to m.
// name selects the aggregation for mode.CountMap and is ignored otherwise; a
// bucket-less or absent aggregation under that name is an error, while an
// aggregation with zero buckets yields an empty map.
func FlattenAggregations(raw map[string]any, m mode.Facets, name string) (result.Facets, error) {
	switch m {
	case mode.Keys:
		keys := make(map[string][]any, len(raw))
		for aggName, agg := range raw {
			buckets, ok := bucketsOf(agg)
			if !ok {
				continue
			}
			list := make([]any, 0, len(buckets))
			for _, b := range buckets {
				list = append(list, b["key"])
			}
			keys[aggName] = list
		}
		return result.NewKeyFacets(keys), nil
	case mode.CountMap:
		if name == "" {
			return result.Facets{}, domain.Invalid(domain.ErrInvalidSyntax, "count map requires an aggregation name")
		}
		buckets, ok := bucketsOf(raw[name])
		if !ok {
			return result.Facets{}, domain.Invalid(domain.ErrInvalidPropertyValue,
				"aggregation %q missing from backend response", name)
		}
		counts := make(map[string]int64, len(buckets))
		for _, b := range buckets {
			counts[fmt.Sprint(b["key"])] = toInt64(b["doc_count"])
		}
		return result.NewCountFacets(counts), nil
	case mode.Raw:
		return result.NewRawFacets(maps.Clone(raw)), nil
	default:
		return result.Facets{}, domain.Invalid(domain.ErrInvalidPropertyValue, "unknown facet mode %q", m)
	}
}

func bucketsOf(agg any) ([]map[string]any, bool) {
	m, ok := agg.(map[string]any)
	if !ok {
		return nil, false
	}
	list, ok := m["buckets"].([]any)
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if b, ok := item.(map[string]any); ok {
			out = append(out, b)
		}
	}
	return out, true
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case interface{ Int64() (int64, error) }:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
