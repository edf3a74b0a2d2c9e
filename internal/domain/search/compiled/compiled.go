// Package compiled holds the backend-executable form of a search request.
package compiled

import (
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/aggregation"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/page"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

// Projection selects which source fields are returned.
type Projection struct {
	Include []string
	Exclude []string
}

// IsEmpty reports whether the full source is returned.
func (p Projection) IsEmpty() bool { return len(p.Include) == 0 && len(p.Exclude) == 0 }

// Script re-scores matched documents.
type Script struct {
	Source string
	Params map[string]any
}

// Query is one compiled request. It is built fresh per request and never shared.
type Query struct {
	Bool         query.Bool
	Aggregations []aggregation.Named
	Projection   Projection
	Sort         []page.Sort
	Limit        int
	Offset       int
	Score        *Script
}

// Root returns the top-level node: the Bool, wrapped in a ScriptScore when re-scoring.
func (q *Query) Root() query.Node {
	if q.Score == nil {
		return q.Bool
	}
	return query.ScriptScore{Query: q.Bool, Source: q.Score.Source, Params: q.Score.Params}
}

// AggregationOnly reports whether no hits are requested.
func (q *Query) AggregationOnly() bool { return q.Limit == 0 && len(q.Aggregations) > 0 }
