package search

import (
	"time"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/access"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/geo"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/page"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/request"
)

// Recency re-ranking parameters.
const (
	recencyScript = "_score / (1 + (params.now_millis - doc['" + domain.FieldCreatedAt +
		"'].value.toInstant().toEpochMilli()) / params.scale_millis)"
	recencyScaleMillis = int64(30 * 24 * time.Hour / time.Millisecond)
)

// Compile turns a search or count request into an executable query.
// It is pure apart from reading the clock for recency re-ranking.
func Compile(req *request.Request, ac access.Context) (*compiled.Query, error) {
	return compile(req, ac, time.Now())
}

func compile(req *request.Request, ac access.Context, now time.Time) (*compiled.Query, error) {
	types := req.SearchTypes()
	if !types.Any() && len(req.IDs()) == 0 && len(req.Facets()) == 0 {
		return nil, domain.Invalid(domain.ErrInvalidSyntax, "no search type is active")
	}

	a, err := assemble(req, ac)
	if err != nil {
		return nil, err
	}
	root, err := normalize(a.clauses.Bool())
	if err != nil {
		return nil, err
	}

	w := req.Window()
	q := &compiled.Query{
		Bool:         root.(query.Bool),
		Aggregations: facetAggregations(req.Facets(), w.Limit),
		Projection:   a.projection,
		Sort:         append([]page.Sort(nil), req.Sort()...),
		Limit:        w.Limit,
		Offset:       w.Offset,
	}
	if types.Text && req.Text().BoostRecent {
		q.Score = &compiled.Script{
			Source: recencyScript,
			Params: map[string]any{
				"now_millis":   now.UnixMilli(),
				"scale_millis": recencyScaleMillis,
			},
		}
		q.Sort = append([]page.Sort{{Field: page.ScoreField, Order: page.Desc}}, q.Sort...)
	}
	if !req.IsSearch() {
		countOnly(q)
	}
	return q, nil
}

// countOnly strips everything a count does not need.
func countOnly(q *compiled.Query) {
	q.Limit, q.Offset = 0, 0
	q.Sort = nil
	q.Aggregations = nil
	q.Projection = compiled.Projection{}
	q.Score = nil
}

// normalize rebuilds the tree with geo relations in backend casing.
// Bool nodes keep their minimum_should_match exactly as set.
func normalize(n query.Node) (query.Node, error) {
	switch v := n.(type) {
	case query.Bool:
		out := query.Bool{MinimumShouldMatch: v.MinimumShouldMatch}
		var err error
		if out.Must, err = normalizeAll(v.Must); err != nil {
			return nil, err
		}
		if out.Should, err = normalizeAll(v.Should); err != nil {
			return nil, err
		}
		if out.MustNot, err = normalizeAll(v.MustNot); err != nil {
			return nil, err
		}
		if out.Filter, err = normalizeAll(v.Filter); err != nil {
			return nil, err
		}
		return out, nil
	case query.GeoShape:
		v.Relation = geo.FormatRelation(v.Relation)
		if v.Type == query.GeometryCircle {
			if v.Radius == "" {
				return nil, domain.Invalid(domain.ErrInvalidGeoValue, "circle on %q has no radius", v.Field)
			}
		} else {
			v.Radius = ""
		}
		return v, nil
	case query.ScriptScore:
		inner, err := normalize(v.Query)
		if err != nil {
			return nil, err
		}
		v.Query = inner
		return v, nil
	default:
		return n, nil
	}
}

func normalizeAll(nodes []query.Node) ([]query.Node, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]query.Node, len(nodes))
	for i, n := range nodes {
		c, err := normalize(n)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
