// Package criterion defines structured attribute search criteria.
package criterion

import (
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
)

// MaxTermValues bounds the values of a single TERM criterion.
const MaxTermValues = 32

// Type is the criterion operator.
type Type string

// Criterion types.
const (
	Term            Type = "TERM"
	BetweenRange    Type = "BETWEEN_RANGE"
	BeforeRange     Type = "BEFORE_RANGE"
	AfterRange      Type = "AFTER_RANGE"
	BetweenTemporal Type = "BETWEEN_TEMPORAL"
	BeforeTemporal  Type = "BEFORE_TEMPORAL"
	AfterTemporal   Type = "AFTER_TEMPORAL"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	switch t {
	case Term, BetweenRange, BeforeRange, AfterRange, BetweenTemporal, BeforeTemporal, AfterTemporal:
		return true
	}
	return false
}

// IsTemporal reports whether values are timestamps.
func (t Type) IsTemporal() bool {
	return t == BetweenTemporal || t == BeforeTemporal || t == AfterTemporal
}

// IsBetween reports whether t takes a start and an end value.
func (t Type) IsBetween() bool { return t == BetweenRange || t == BetweenTemporal }

// IsBefore reports whether t is an upper bound.
func (t Type) IsBefore() bool { return t == BeforeRange || t == BeforeTemporal }

// IsAfter reports whether t is a lower bound.
func (t Type) IsAfter() bool { return t == AfterRange || t == AfterTemporal }

// Arity returns the exact number of values t requires, or 0 for any positive count.
func (t Type) Arity() int {
	switch {
	case t.IsBetween():
		return 2
	case t.IsBefore(), t.IsAfter():
		return 1
	default:
		return 0
	}
}

// Criterion is one validated search criterion.
type Criterion struct {
	field  string
	typ    Type
	values []string
}

// New validates and creates a Criterion. Value counts are never truncated.
func New(field string, typ Type, values []string) (Criterion, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return Criterion{}, domain.Invalid(domain.ErrInvalidSyntax, "criterion field is required")
	}
	if !domain.IsValidFieldName(field) {
		return Criterion{}, domain.Invalid(domain.ErrInvalidPropertyValue, "invalid criterion field %q", field)
	}
	if !typ.IsValid() {
		return Criterion{}, domain.Invalid(domain.ErrInvalidPropertyValue, "unknown searchType %q for field %q", typ, field)
	}

	switch n := typ.Arity(); {
	case n > 0 && len(values) != n:
		return Criterion{}, domain.Invalid(domain.ErrInvalidSyntax,
			"%s on %q requires exactly %d value(s), got %d", typ, field, n, len(values))
	case n == 0 && len(values) == 0:
		return Criterion{}, domain.Invalid(domain.ErrInvalidSyntax, "%s on %q requires at least one value", typ, field)
	case n == 0 && len(values) > MaxTermValues:
		return Criterion{}, domain.Invalid(domain.ErrInvalidSyntax,
			"%s on %q allows at most %d values, got %d", typ, field, MaxTermValues, len(values))
	}

	vals := make([]string, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return Criterion{}, domain.Invalid(domain.ErrInvalidPropertyValue, "empty value for field %q", field)
		}
		vals[i] = v
	}
	return Criterion{field: field, typ: typ, values: vals}, nil
}

// Field returns the attribute path.
func (c Criterion) Field() string { return c.field }

// Type returns the operator.
func (c Criterion) Type() Type { return c.typ }

// Values returns a copy of the values.
func (c Criterion) Values() []string {
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}
