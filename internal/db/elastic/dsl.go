package elastic

import (
	"fmt"
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/aggregation"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

// searchBody renders the full _search request body.
func searchBody(q *compiled.Query) (map[string]any, error) {
	root, err := nodeDSL(q.Root())
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"query":            root,
		"from":             q.Offset,
		"size":             q.Limit,
		"track_total_hits": true,
	}
	if len(q.Sort) > 0 {
		sorts := make([]any, 0, len(q.Sort))
		for _, s := range q.Sort {
			sorts = append(sorts, map[string]any{s.Field: map[string]any{"order": string(s.Order)}})
		}
		body["sort"] = sorts
	}
	if !q.Projection.IsEmpty() {
		src := map[string]any{}
		if len(q.Projection.Include) > 0 {
			src["includes"] = q.Projection.Include
		}
		if len(q.Projection.Exclude) > 0 {
			src["excludes"] = q.Projection.Exclude
		}
		body["_source"] = src
	}
	if len(q.Aggregations) > 0 {
		aggs, err := aggsDSL(q.Aggregations)
		if err != nil {
			return nil, err
		}
		body["aggs"] = aggs
	}
	return body, nil
}

// countBody renders the _count request body. Scoring is irrelevant to counts.
func countBody(q *compiled.Query) (map[string]any, error) {
	root, err := nodeDSL(q.Bool)
	if err != nil {
		return nil, err
	}
	return map[string]any{"query": root}, nil
}

func nodeDSL(n query.Node) (map[string]any, error) {
	switch v := n.(type) {
	case query.MatchAll:
		return map[string]any{"match_all": map[string]any{}}, nil
	case query.Match:
		opts := map[string]any{"query": v.Value}
		if v.Fuzziness != "" {
			opts["fuzziness"] = v.Fuzziness
		}
		if v.Operator != "" {
			opts["operator"] = v.Operator
		}
		return map[string]any{"match": map[string]any{v.Field: opts}}, nil
	case query.MatchPhrase:
		return map[string]any{"match_phrase": map[string]any{v.Field: v.Value}}, nil
	case query.Term:
		return map[string]any{"term": map[string]any{v.Field: map[string]any{"value": v.Value}}}, nil
	case query.Terms:
		return map[string]any{"terms": map[string]any{v.Field: v.Values}}, nil
	case query.Range:
		bounds := map[string]any{}
		for key, val := range map[string]any{"gt": v.GT, "gte": v.GTE, "lt": v.LT, "lte": v.LTE} {
			if val != nil {
				bounds[key] = val
			}
		}
		return map[string]any{"range": map[string]any{v.Field: bounds}}, nil
	case query.Wildcard:
		opts := map[string]any{"value": v.Value}
		if v.CaseInsensitive {
			opts["case_insensitive"] = true
		}
		return map[string]any{"wildcard": map[string]any{v.Field: opts}}, nil
	case query.GeoShape:
		shape, err := shapeDSL(v)
		if err != nil {
			return nil, err
		}
		return map[string]any{"geo_shape": map[string]any{v.Field: map[string]any{
			"shape":    shape,
			// Nodes carry the title-cased token; the DSL documents lowercase.
			"relation": strings.ToLower(v.Relation),
		}}}, nil
	case query.MultiMatch:
		opts := map[string]any{"query": v.Query, "fields": v.Fields}
		if v.Type != "" {
			opts["type"] = v.Type
		}
		if v.Fuzziness != "" {
			opts["fuzziness"] = v.Fuzziness
		}
		if v.Boost != 0 {
			opts["boost"] = v.Boost
		}
		return map[string]any{"multi_match": opts}, nil
	case query.QueryString:
		return map[string]any{"query_string": map[string]any{"query": v.Query}}, nil
	case query.ScriptScore:
		inner, err := nodeDSL(v.Query)
		if err != nil {
			return nil, err
		}
		return map[string]any{"script_score": map[string]any{
			"query":  inner,
			"script": map[string]any{"source": v.Source, "params": v.Params},
		}}, nil
	case query.Bool:
		return boolDSL(v)
	default:
		return nil, fmt.Errorf("%w: node %T", db.ErrUnsupportedQuery, n)
	}
}

func boolDSL(b query.Bool) (map[string]any, error) {
	out := map[string]any{}
	groups := []struct {
		key   string
		nodes []query.Node
	}{
		{"must", b.Must},
		{"should", b.Should},
		{"must_not", b.MustNot},
		{"filter", b.Filter},
	}
	for _, g := range groups {
		if len(g.nodes) == 0 {
			continue
		}
		list := make([]any, 0, len(g.nodes))
		for _, c := range g.nodes {
			m, err := nodeDSL(c)
			if err != nil {
				return nil, err
			}
			list = append(list, m)
		}
		out[g.key] = list
	}
	if b.MinimumShouldMatch > 0 {
		out["minimum_should_match"] = b.MinimumShouldMatch
	}
	return map[string]any{"bool": out}, nil
}

func shapeDSL(g query.GeoShape) (map[string]any, error) {
	if len(g.Coordinates) == 0 {
		return nil, fmt.Errorf("%w: %s without coordinates", db.ErrUnsupportedQuery, g.Type)
	}
	pairs := make([][]float64, 0, len(g.Coordinates))
	for _, c := range g.Coordinates {
		pairs = append(pairs, []float64{c[0], c[1]})
	}

	shape := map[string]any{"type": string(g.Type)}
	switch g.Type {
	case query.GeometryPoint:
		shape["coordinates"] = pairs[0]
	case query.GeometryCircle:
		shape["coordinates"] = pairs[0]
		shape["radius"] = g.Radius
	case query.GeometryEnvelope, query.GeometryLineString:
		shape["coordinates"] = pairs
	case query.GeometryPolygon:
		shape["coordinates"] = [][][]float64{pairs}
	default:
		return nil, fmt.Errorf("%w: geometry %q", db.ErrUnsupportedQuery, g.Type)
	}
	return shape, nil
}

func aggsDSL(aggs []aggregation.Named) (map[string]any, error) {
	out := make(map[string]any, len(aggs))
	for _, a := range aggs {
		m, err := aggDSL(a.Node)
		if err != nil {
			return nil, fmt.Errorf("aggregation %q: %w", a.Name, err)
		}
		out[a.Name] = m
	}
	return out, nil
}

func aggDSL(n aggregation.Node) (map[string]any, error) {
	var m map[string]any
	switch v := n.(type) {
	case aggregation.Terms:
		opts := map[string]any{"field": v.Field}
		if v.Size > 0 {
			opts["size"] = v.Size
		}
		m = map[string]any{"terms": opts}
	case aggregation.Histogram:
		m = map[string]any{"histogram": map[string]any{"field": v.Field, "interval": v.Interval}}
	case aggregation.Metric:
		if !v.Op.IsMetric() {
			return nil, fmt.Errorf("%w: metric %s", db.ErrUnsupportedQuery, v.Op)
		}
		m = map[string]any{v.Op.String(): map[string]any{"field": v.Field}}
	case aggregation.Filter:
		q, err := nodeDSL(v.Query)
		if err != nil {
			return nil, err
		}
		m = map[string]any{"filter": q}
	case aggregation.Global:
		m = map[string]any{"global": map[string]any{}}
	default:
		return nil, fmt.Errorf("%w: aggregation %T", db.ErrUnsupportedQuery, n)
	}

	if subs := n.Subs(); len(subs) > 0 {
		sub, err := aggsDSL(subs)
		if err != nil {
			return nil, err
		}
		m["aggs"] = sub
	}
	return m, nil
}
