package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSyntax signals missing mandatory fields, no active search category
	// or malformed value counts.
	ErrInvalidSyntax = errors.New("invalid syntax")
	// ErrInvalidPropertyValue signals a wrong field/value shape or an out-of-range value.
	ErrInvalidPropertyValue = errors.New("invalid property value")
	// ErrInvalidGeoParam signals a missing or unsupported geo parameter.
	ErrInvalidGeoParam = errors.New("invalid geo parameter")
	// ErrInvalidGeoValue signals a malformed geometry.
	ErrInvalidGeoValue = errors.New("invalid geo value")
	// ErrBadTextQuery signals an unusable free-text query.
	ErrBadTextQuery = errors.New("bad text query")
	// ErrBadFilter signals a misuse of response projection.
	ErrBadFilter = errors.New("bad filter")
	// ErrOperationNotAllowed signals projection on a non-search request.
	ErrOperationNotAllowed = errors.New("operation not allowed")
	// ErrInternal signals a backend execution failure.
	ErrInternal = errors.New("internal error")
	// ErrNotFound signals a missing catalogue item.
	ErrNotFound = errors.New("not found")
)

// kinds lists every classified error in the order KindOf checks them.
var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidSyntax, "invalid_syntax"},
	{ErrInvalidPropertyValue, "invalid_property_value"},
	{ErrInvalidGeoParam, "invalid_geo_param"},
	{ErrInvalidGeoValue, "invalid_geo_value"},
	{ErrBadTextQuery, "bad_text_query"},
	{ErrBadFilter, "bad_filter"},
	{ErrOperationNotAllowed, "operation_not_allowed"},
	{ErrNotFound, "not_found"},
	{ErrInternal, "internal_error"},
}

// ValidationError carries a client-visible reason for a rejected request.
type ValidationError struct {
	Kind   error
	Detail string
}

func (e *ValidationError) Error() string { return e.Kind.Error() + ": " + e.Detail }

func (e *ValidationError) Unwrap() error { return e.Kind }

// Invalid creates a ValidationError of the given kind.
func Invalid(kind error, format string, args ...any) error {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the taxonomy sentinel err belongs to, ErrInternal when unclassified.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.err
		}
	}
	return ErrInternal
}

// KindName returns a stable snake_case name for the kind of err.
func KindName(err error) string {
	kind := KindOf(err)
	for _, k := range kinds {
		if k.err == kind {
			return k.name
		}
	}
	return "internal_error"
}

// Detail returns the human-readable reason of a ValidationError, or err's text otherwise.
func Detail(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Detail
	}
	return err.Error()
}
