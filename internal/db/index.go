package db

import (
	"errors"
	"strconv"
	"strings"
)

// KeywordSuffix addresses the exact-match sub-field of a keyword field.
const KeywordSuffix = ".keyword"

// IndexFieldType enumerates supported index field types.
type IndexFieldType int

const (
	// IndexFieldText is an analyzed full-text field.
	IndexFieldText IndexFieldType = iota
	// IndexFieldTag is an exact-match field.
	IndexFieldTag
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric
	// IndexFieldDate is a timestamp field.
	IndexFieldDate
	// IndexFieldBool is a boolean field.
	IndexFieldBool
	// IndexFieldGeoShape is a geometry field.
	IndexFieldGeoShape
)

var fieldTypeNames = [...]string{
	IndexFieldText:     "text",
	IndexFieldTag:      "tag",
	IndexFieldNumeric:  "numeric",
	IndexFieldDate:     "date",
	IndexFieldBool:     "bool",
	IndexFieldGeoShape: "geoshape",
}

func (t IndexFieldType) String() string {
	if t < 0 || int(t) >= len(fieldTypeNames) {
		return "unknown"
	}
	return fieldTypeNames[t]
}

// IndexField describes a single field in an index schema. Name is the
// dotted document path.
type IndexField struct {
	Name string
	Type IndexFieldType

	// Keyword adds an exact-match sub-field addressed as Name+".keyword".
	// Only valid on text fields.
	Keyword bool
	// Multi marks array-valued fields.
	Multi bool
	// Sortable requests a sortable attribute where the backend needs one.
	Sortable bool

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool
}

// IndexDefinition is a complete index definition.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if strings.HasSuffix(f.Name, KeywordSuffix) {
			return errors.New("field name must not carry the keyword suffix: " + f.Name)
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if f.Keyword && f.Type != IndexFieldText {
			return errors.New("keyword sub-field requires a text field: " + f.Name)
		}
	}

	return nil
}

// Lookup resolves a query field path against the schema. A path ending in
// the keyword suffix resolves to its text field with keyword set.
func (idx *IndexDefinition) Lookup(path string) (f IndexField, keyword, ok bool) {
	base, isKeyword := strings.CutSuffix(path, KeywordSuffix)
	for i := range idx.Fields {
		if idx.Fields[i].Name != base {
			continue
		}
		f = idx.Fields[i]
		if isKeyword && !f.Keyword {
			return IndexField{}, false, false
		}
		return f, isKeyword, true
	}
	return IndexField{}, false, false
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
