// Package aggregation defines facet and metric aggregation trees.
package aggregation

import "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"

// Kind identifies the variant of a Node.
type Kind int

// Aggregation kinds.
const (
	KindTerms Kind = iota
	KindHistogram
	KindAvg
	KindSum
	KindMin
	KindMax
	KindCardinality
	KindValueCount
	KindFilter
	KindGlobal
)

var kindNames = [...]string{
	KindTerms:       "terms",
	KindHistogram:   "histogram",
	KindAvg:         "avg",
	KindSum:         "sum",
	KindMin:         "min",
	KindMax:         "max",
	KindCardinality: "cardinality",
	KindValueCount:  "value_count",
	KindFilter:      "filter",
	KindGlobal:      "global",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsMetric reports whether k is a single-value metric over one field.
func (k Kind) IsMetric() bool {
	return k >= KindAvg && k <= KindValueCount
}

// Node is one aggregation, optionally carrying named sub-aggregations.
type Node interface {
	Kind() Kind
	Subs() []Named
}

// Named binds an aggregation to the name it is returned under.
type Named struct {
	Name string
	Node Node
}

// Terms buckets documents by the distinct values of Field.
type Terms struct {
	Field string
	Size  int
	Sub   []Named
}

// Histogram buckets a numeric field into fixed-width intervals.
type Histogram struct {
	Field    string
	Interval float64
	Sub      []Named
}

// Metric computes a single value (avg, sum, min, max, cardinality, value_count) over Field.
type Metric struct {
	Op    Kind
	Field string
}

// Filter narrows the aggregation context to documents matching Query.
type Filter struct {
	Query query.Node
	Sub   []Named
}

// Global aggregates over all documents of the index, ignoring the query.
type Global struct {
	Sub []Named
}

// Kind implements Node.
func (Terms) Kind() Kind { return KindTerms }

// Subs implements Node.
func (t Terms) Subs() []Named { return t.Sub }

// Kind implements Node.
func (Histogram) Kind() Kind { return KindHistogram }

// Subs implements Node.
func (h Histogram) Subs() []Named { return h.Sub }

// Kind implements Node.
func (m Metric) Kind() Kind { return m.Op }

// Subs implements Node. Metrics never nest.
func (Metric) Subs() []Named { return nil }

// Kind implements Node.
func (Filter) Kind() Kind { return KindFilter }

// Subs implements Node.
func (f Filter) Subs() []Named { return f.Sub }

// Kind implements Node.
func (Global) Kind() Kind { return KindGlobal }

// Subs implements Node.
func (g Global) Subs() []Named { return g.Sub }
