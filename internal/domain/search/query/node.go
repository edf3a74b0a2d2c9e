// Package query defines the compiled query tree handed to search backends.
package query

// Kind identifies the variant of a Node.
type Kind int

// Node kinds.
const (
	KindMatchAll Kind = iota
	KindMatch
	KindMatchPhrase
	KindTerm
	KindTerms
	KindRange
	KindWildcard
	KindGeoShape
	KindMultiMatch
	KindQueryString
	KindScriptScore
	KindBool
)

var kindNames = [...]string{
	KindMatchAll:    "match_all",
	KindMatch:       "match",
	KindMatchPhrase: "match_phrase",
	KindTerm:        "term",
	KindTerms:       "terms",
	KindRange:       "range",
	KindWildcard:    "wildcard",
	KindGeoShape:    "geo_shape",
	KindMultiMatch:  "multi_match",
	KindQueryString: "query_string",
	KindScriptScore: "script_score",
	KindBool:        "bool",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node is one backend query primitive or a boolean composite.
type Node interface {
	Kind() Kind
}

// FuzzinessAuto lets the backend derive the edit distance from the term length.
const FuzzinessAuto = "AUTO"

// MatchAll matches every document.
type MatchAll struct{}

// Match is an analyzed full-text match on one field.
type Match struct {
	Field     string
	Value     string
	Fuzziness string
	Operator  string
}

// MatchPhrase matches the analyzed terms of Value in order.
type MatchPhrase struct {
	Field string
	Value string
}

// Term is an exact match on a non-analyzed field. Value is a string, bool or number.
type Term struct {
	Field string
	Value any
}

// Terms matches any of Values exactly.
type Terms struct {
	Field  string
	Values []string
}

// Range bounds a numeric or date field. Bounds are float64 or RFC 3339 strings; nil is unbounded.
type Range struct {
	Field string
	GT    any
	GTE   any
	LT    any
	LTE   any
}

// Wildcard matches a pattern with * and ? placeholders.
type Wildcard struct {
	Field           string
	Value           string
	CaseInsensitive bool
}

// GeometryType is a GeoJSON-like shape type.
type GeometryType string

// Geometry types.
const (
	GeometryPoint      GeometryType = "point"
	GeometryCircle     GeometryType = "circle"
	GeometryEnvelope   GeometryType = "envelope"
	GeometryLineString GeometryType = "linestring"
	GeometryPolygon    GeometryType = "polygon"
)

// GeoShape matches documents whose shape stands in Relation to the given geometry.
// Coordinates are [lon, lat] pairs: one for point and circle, two corners
// (top-left, bottom-right) for envelope, the outer ring for polygon.
// Radius is set for circles only, e.g. "500m".
type GeoShape struct {
	Field       string
	Type        GeometryType
	Coordinates [][2]float64
	Radius      string
	Relation    string
}

// Multi-match types.
const (
	MultiMatchBestFields = "best_fields"
	MultiMatchBoolPrefix = "bool_prefix"
)

// MultiMatch runs one text query across several fields.
type MultiMatch struct {
	Fields    []string
	Query     string
	Fuzziness string
	Type      string
	Boost     float64
}

// QueryString is a free-form query in the backend's query-string syntax.
type QueryString struct {
	Query string
}

// ScriptScore re-scores the documents matched by Query with a script.
type ScriptScore struct {
	Query  Node
	Source string
	Params map[string]any
}

// Bool composes child nodes. MinimumShouldMatch is sent only when positive.
type Bool struct {
	Must               []Node
	Should             []Node
	MustNot            []Node
	Filter             []Node
	MinimumShouldMatch int
}

// Kind implements Node.
func (MatchAll) Kind() Kind { return KindMatchAll }

// Kind implements Node.
func (Match) Kind() Kind { return KindMatch }

// Kind implements Node.
func (MatchPhrase) Kind() Kind { return KindMatchPhrase }

// Kind implements Node.
func (Term) Kind() Kind { return KindTerm }

// Kind implements Node.
func (Terms) Kind() Kind { return KindTerms }

// Kind implements Node.
func (Range) Kind() Kind { return KindRange }

// Kind implements Node.
func (Wildcard) Kind() Kind { return KindWildcard }

// Kind implements Node.
func (GeoShape) Kind() Kind { return KindGeoShape }

// Kind implements Node.
func (MultiMatch) Kind() Kind { return KindMultiMatch }

// Kind implements Node.
func (QueryString) Kind() Kind { return KindQueryString }

// Kind implements Node.
func (ScriptScore) Kind() Kind { return KindScriptScore }

// Kind implements Node.
func (Bool) Kind() Kind { return KindBool }

// IsEmpty reports whether b has no children.
func (b Bool) IsEmpty() bool {
	return len(b.Must) == 0 && len(b.Should) == 0 && len(b.MustNot) == 0 && len(b.Filter) == 0
}

// AnyOf returns a should-group requiring at least one of nodes to match.
func AnyOf(nodes ...Node) Bool {
	b := Bool{Should: nodes}
	if len(nodes) > 0 {
		b.MinimumShouldMatch = 1
	}
	return b
}

// AllOf returns a bool node requiring every one of nodes to match.
func AllOf(nodes ...Node) Bool {
	return Bool{Must: nodes}
}

// Walk calls fn for n and every descendant, depth first. Returning false skips the children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case Bool:
		for _, group := range [][]Node{v.Must, v.Should, v.MustNot, v.Filter} {
			for _, c := range group {
				Walk(c, fn)
			}
		}
	case ScriptScore:
		Walk(v.Query, fn)
	}
}
