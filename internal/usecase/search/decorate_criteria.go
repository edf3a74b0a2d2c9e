package search

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/clause"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/criterion"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

// temporalLayouts are accepted for temporal criteria, most specific first.
var temporalLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// decorateCriteria adds one FILTER entry holding every criterion as a
// separate should-group under must, so criteria are conjunctive.
func decorateCriteria(a *assembly, criteria []criterion.Criterion, fuzzy bool) error {
	if len(criteria) == 0 {
		return nil
	}
	groups := make([]query.Node, 0, len(criteria))
	for _, c := range criteria {
		nodes, err := criterionNodes(c, fuzzy)
		if err != nil {
			return err
		}
		groups = append(groups, query.AnyOf(nodes...))
	}
	return a.clauses.Add(clause.Filter, query.AllOf(groups...))
}

func criterionNodes(c criterion.Criterion, fuzzy bool) ([]query.Node, error) {
	if c.Type() == criterion.Term {
		var nodes []query.Node
		for _, v := range c.Values() {
			nodes = append(nodes, termNodes(c.Field(), v, fuzzy)...)
		}
		return nodes, nil
	}
	r, err := rangeNode(c)
	if err != nil {
		return nil, err
	}
	return []query.Node{r}, nil
}

// termNodes routes one TERM value to the primitive matching the field category.
func termNodes(field, value string, fuzzy bool) []query.Node {
	base := strings.TrimSuffix(field, domain.KeywordSuffix)
	fuzzyMatch := query.Match{Field: base, Value: value, Fuzziness: query.FuzzinessAuto}

	switch {
	case base == domain.FieldDescription || strings.HasPrefix(base, domain.FieldLocationPrefix):
		nodes := []query.Node{query.Match{Field: base, Value: value}}
		if fuzzy {
			nodes = append(nodes, fuzzyMatch)
		}
		return nodes
	case base == domain.FieldTags:
		nodes := []query.Node{query.MatchPhrase{Field: base, Value: value}}
		if fuzzy {
			nodes = append(nodes, fuzzyMatch)
		}
		return nodes
	case base == domain.FieldFileFormat:
		return []query.Node{query.Wildcard{
			Field:           domain.Keyword(base),
			Value:           "*" + escapeWildcard(value) + "*",
			CaseInsensitive: true,
		}}
	default:
		nodes := []query.Node{query.Term{Field: domain.Keyword(field), Value: value}}
		if fuzzy && (base == domain.FieldLabel || base == domain.FieldInstance) {
			nodes = append(nodes, fuzzyMatch)
		}
		return nodes
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string { return wildcardEscaper.Replace(s) }

// rangeNode maps range and temporal criteria. BETWEEN requires start < end.
// Numeric bounds must be finite; temporal bounds keep sub-second precision.
func rangeNode(c criterion.Criterion) (query.Node, error) {
	values := c.Values()
	bounds := make([]any, len(values))
	times := make([]time.Time, len(values))
	nums := make([]float64, len(values))
	for i, v := range values {
		var err error
		if c.Type().IsTemporal() {
			times[i], err = parseTemporal(v)
			bounds[i] = times[i].UTC().Format(time.RFC3339Nano)
		} else {
			nums[i], err = strconv.ParseFloat(v, 64)
			if err == nil && (math.IsNaN(nums[i]) || math.IsInf(nums[i], 0)) {
				err = errNotFinite
			}
			bounds[i] = nums[i]
		}
		if err != nil {
			return nil, domain.Invalid(domain.ErrInvalidPropertyValue,
				"invalid %s value %q for field %q", c.Type(), v, c.Field())
		}
	}

	r := query.Range{Field: c.Field()}
	switch {
	case c.Type().IsBetween():
		ordered := nums[0] < nums[1]
		if c.Type().IsTemporal() {
			ordered = times[0].Before(times[1])
		}
		if !ordered {
			return nil, domain.Invalid(domain.ErrInvalidPropertyValue,
				"%s on %q requires start < end, got %q and %q", c.Type(), c.Field(), values[0], values[1])
		}
		r.GTE, r.LTE = bounds[0], bounds[1]
	case c.Type().IsBefore():
		r.LT = bounds[0]
	case c.Type().IsAfter():
		r.GT = bounds[0]
	}
	return r, nil
}

var errNotFinite = errors.New("not a finite number")

func parseTemporal(v string) (time.Time, error) {
	var err error
	for _, layout := range temporalLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}
