package page

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
)

func intPtr(i int) *int { return &i }

func TestResolve_Defaults(t *testing.T) {
	w, err := Resolve(Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Limit != MaxWindow || w.Offset != 0 {
		t.Errorf("Resolve() = %+v, want limit=%d offset=0", w, MaxWindow)
	}
}

func TestResolve_OffsetOnly(t *testing.T) {
	w, err := Resolve(Params{Offset: intPtr(100)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Limit != MaxWindow-100 || w.Offset != 100 {
		t.Errorf("Resolve() = %+v", w)
	}
}

func TestResolve_SizePage(t *testing.T) {
	w, err := Resolve(Params{Size: intPtr(25), Page: intPtr(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Limit != 25 || w.Offset != 50 {
		t.Errorf("Resolve() = %+v, want limit=25 offset=50", w)
	}
}

func TestResolve_PageWithoutSize(t *testing.T) {
	w, err := Resolve(Params{Page: intPtr(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Limit != DefaultPageSize || w.Offset != DefaultPageSize {
		t.Errorf("Resolve() = %+v", w)
	}
}

func TestResolve_LimitOffsetWinsOverSizePage(t *testing.T) {
	w, err := Resolve(Params{Limit: intPtr(5), Offset: intPtr(1), Size: intPtr(50), Page: intPtr(9)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Limit != 5 || w.Offset != 1 {
		t.Errorf("Resolve() = %+v", w)
	}
}

func TestResolve_Bound(t *testing.T) {
	tests := []struct {
		limit, offset int
		ok            bool
	}{
		{0, 0, false},
		{1, 0, true},
		{0, 1, true},
		{9999, 1, true},
		{10000, 0, true},
		{10000, 1, false},
		{1, 10000, false},
		{5000, 5001, false},
	}
	for _, tt := range tests {
		_, err := Resolve(Params{Limit: intPtr(tt.limit), Offset: intPtr(tt.offset)})
		if (err == nil) != tt.ok {
			t.Errorf("Resolve(limit=%d, offset=%d) err = %v, want ok=%v", tt.limit, tt.offset, err, tt.ok)
		}
		if err != nil && !errors.Is(err, domain.ErrInvalidSyntax) {
			t.Errorf("expected ErrInvalidSyntax, got %v", err)
		}
	}
}

func TestResolve_PageBound(t *testing.T) {
	tests := []struct {
		name       string
		size, page int
		ok         bool
	}{
		{"last full page", 100, 100, true},
		{"one page past the window", 100, 101, false},
		{"size larger than window", 10001, 1, false},
		{"huge page", 4096, 1<<52 + 1, false},
		{"max int page", 20, math.MaxInt, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Resolve(Params{Size: intPtr(tt.size), Page: intPtr(tt.page)})
			if (err == nil) != tt.ok {
				t.Fatalf("Resolve(size=%d, page=%d) = %+v, err = %v, want ok=%v", tt.size, tt.page, w, err, tt.ok)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidSyntax) {
				t.Errorf("expected ErrInvalidSyntax, got %v", err)
			}
		})
	}
}

func TestResolve_Negative(t *testing.T) {
	if _, err := Resolve(Params{Limit: intPtr(-1), Offset: intPtr(5)}); err == nil {
		t.Fatal("expected error for negative limit")
	}
	if _, err := Resolve(Params{Size: intPtr(10), Page: intPtr(0)}); err == nil {
		t.Fatal("expected error for page 0")
	}
}

func TestParseSort_Default(t *testing.T) {
	sorts, err := ParseSort("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sorts) != 1 || sorts[0].Field != domain.FieldCreatedAt || sorts[0].Order != Desc {
		t.Errorf("ParseSort() = %+v", sorts)
	}
}

func TestParseSort_KeywordSuffix(t *testing.T) {
	sorts, err := ParseSort("label:asc;name.keyword:DESC;itemCreatedAt:asc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Sort{
		{Field: "label.keyword", Order: Asc},
		{Field: "name.keyword", Order: Desc},
		{Field: "itemCreatedAt", Order: Asc},
	}
	if len(sorts) != len(want) {
		t.Fatalf("len = %d, want %d", len(sorts), len(want))
	}
	for i := range want {
		if sorts[i] != want[i] {
			t.Errorf("sorts[%d] = %+v, want %+v", i, sorts[i], want[i])
		}
	}
}

func TestParseSort_ScoreNotSuffixed(t *testing.T) {
	sorts, err := ParseSort("_score:desc;label")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Sort{{Field: ScoreField, Order: Desc}, {Field: "label.keyword", Order: Asc}}
	if len(sorts) != len(want) || sorts[0] != want[0] || sorts[1] != want[1] {
		t.Errorf("sorts = %+v, want %+v", sorts, want)
	}
}

func TestParseSort_BareFieldAscending(t *testing.T) {
	sorts, err := ParseSort("label")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sorts[0].Order != Asc {
		t.Errorf("Order = %q", sorts[0].Order)
	}
}

func TestParseSort_TooManyFields(t *testing.T) {
	_, err := ParseSort("name:asc;name:desc;name:asc;name:desc")
	if err == nil {
		t.Fatal("expected error for 4 sort fields")
	}
	if !errors.Is(err, domain.ErrInvalidSyntax) {
		t.Errorf("expected ErrInvalidSyntax, got %v", err)
	}
	if !strings.Contains(err.Error(), "max 3 sort fields") {
		t.Errorf("error = %q", err)
	}
}

func TestParseSort_UnknownDirection(t *testing.T) {
	_, err := ParseSort("label:up")
	if !errors.Is(err, domain.ErrInvalidPropertyValue) {
		t.Fatalf("expected ErrInvalidPropertyValue, got %v", err)
	}
}

func TestParseSort_InvalidField(t *testing.T) {
	if _, err := ParseSort(":asc"); err == nil {
		t.Fatal("expected error for empty field")
	}
}
