package query

import "testing"

func TestAnyOf(t *testing.T) {
	b := AnyOf(Match{Field: "a", Value: "1"}, Match{Field: "b", Value: "2"})
	if len(b.Should) != 2 || b.MinimumShouldMatch != 1 {
		t.Errorf("AnyOf = %+v", b)
	}
	if empty := AnyOf(); empty.MinimumShouldMatch != 0 || !empty.IsEmpty() {
		t.Errorf("AnyOf() = %+v, want empty without msm", empty)
	}
}

func TestAllOf(t *testing.T) {
	b := AllOf(MatchAll{})
	if len(b.Must) != 1 || b.MinimumShouldMatch != 0 {
		t.Errorf("AllOf = %+v", b)
	}
}

func TestWalk(t *testing.T) {
	tree := ScriptScore{
		Query: Bool{
			Must:    []Node{AnyOf(Match{}, AllOf(Term{}, Terms{}))},
			MustNot: []Node{Match{}},
			Filter:  []Node{Range{}, GeoShape{}},
		},
	}

	counts := map[Kind]int{}
	Walk(tree, func(n Node) bool {
		counts[n.Kind()]++
		return true
	})
	want := map[Kind]int{
		KindScriptScore: 1, KindBool: 3, KindMatch: 2,
		KindTerm: 1, KindTerms: 1, KindRange: 1, KindGeoShape: 1,
	}
	for k, n := range want {
		if counts[k] != n {
			t.Errorf("%s visited %d times, want %d", k, counts[k], n)
		}
	}

	visited := 0
	Walk(tree, func(Node) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("pruned walk visited %d nodes, want 1", visited)
	}
}

func TestKind_String(t *testing.T) {
	if KindGeoShape.String() != "geo_shape" {
		t.Errorf("KindGeoShape = %q", KindGeoShape.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("Kind(99) = %q", Kind(99).String())
	}
}
