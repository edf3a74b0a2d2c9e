// Package clause holds the request-scoped accumulator the decorator pipeline writes into.
package clause

import (
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

// MaxNodesPerClause bounds each clause list of a single request.
const MaxNodesPerClause = 1024

// Kind is one of the four composition slots of a boolean query.
type Kind int

// Clause kinds.
const (
	// Must is AND with scoring.
	Must Kind = iota
	// Should is OR with scoring.
	Should
	// MustNot is AND NOT without scoring.
	MustNot
	// Filter is AND without scoring.
	Filter
)

func (k Kind) String() string {
	switch k {
	case Must:
		return "must"
	case Should:
		return "should"
	case MustNot:
		return "must_not"
	case Filter:
		return "filter"
	default:
		return "unknown"
	}
}

// Map collects query nodes per clause kind in insertion order.
// It is owned by one compilation and never shared.
type Map struct {
	must    []query.Node
	should  []query.Node
	mustNot []query.Node
	filter  []query.Node
}

// New creates an empty Map.
func New() *Map { return &Map{} }

// Add appends nodes to the clause list of kind k.
func (m *Map) Add(k Kind, nodes ...query.Node) error {
	list := m.list(k)
	if list == nil {
		return domain.Invalid(domain.ErrInternal, "unknown clause kind %d", int(k))
	}
	if len(*list)+len(nodes) > MaxNodesPerClause {
		return domain.Invalid(domain.ErrInvalidSyntax, "too many %s conditions (max %d)", k, MaxNodesPerClause)
	}
	*list = append(*list, nodes...)
	return nil
}

func (m *Map) list(k Kind) *[]query.Node {
	switch k {
	case Must:
		return &m.must
	case Should:
		return &m.should
	case MustNot:
		return &m.mustNot
	case Filter:
		return &m.filter
	default:
		return nil
	}
}

// Must returns the must nodes.
func (m *Map) Must() []query.Node { return m.must }

// Should returns the should nodes.
func (m *Map) Should() []query.Node { return m.should }

// MustNot returns the must-not nodes.
func (m *Map) MustNot() []query.Node { return m.mustNot }

// Filter returns the filter nodes.
func (m *Map) Filter() []query.Node { return m.filter }

// Len returns the number of nodes in clause k.
func (m *Map) Len(k Kind) int {
	if list := m.list(k); list != nil {
		return len(*list)
	}
	return 0
}

// IsEmpty reports whether no decorator contributed anything.
func (m *Map) IsEmpty() bool {
	return len(m.must) == 0 && len(m.should) == 0 && len(m.mustNot) == 0 && len(m.filter) == 0
}

// Bool builds the top-level boolean node. Clause lists are copied.
func (m *Map) Bool() query.Bool {
	return query.Bool{
		Must:    cloneNodes(m.must),
		Should:  cloneNodes(m.should),
		MustNot: cloneNodes(m.mustNot),
		Filter:  cloneNodes(m.filter),
	}
}

func cloneNodes(in []query.Node) []query.Node {
	if len(in) == 0 {
		return nil
	}
	out := make([]query.Node, len(in))
	copy(out, in)
	return out
}
