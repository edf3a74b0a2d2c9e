package db

import "strings"

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Text adds an analyzed TEXT field.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText})
}

// Keyword adds a TEXT field with an exact-match keyword sub-field.
func (b *IndexBuilder) Keyword(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText, Keyword: true, Sortable: true})
}

// KeywordList adds an array-valued TEXT field with a keyword sub-field.
func (b *IndexBuilder) KeywordList(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText, Keyword: true, Multi: true})
}

// Tag adds an exact-match TAG field.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldTag})
}

// TagWithOpts adds a TAG field with custom separator and case sensitivity.
func (b *IndexBuilder) TagWithOpts(name, separator string, caseSensitive bool) *IndexBuilder {
	return b.add(IndexField{
		Name:             name,
		Type:             IndexFieldTag,
		TagSeparator:     separator,
		TagCaseSensitive: caseSensitive,
	})
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldNumeric, Sortable: true})
}

// Date adds a timestamp field.
func (b *IndexBuilder) Date(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldDate, Sortable: true})
}

// Bool adds a boolean field.
func (b *IndexBuilder) Bool(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldBool})
}

// GeoShape adds a geometry field.
func (b *IndexBuilder) GeoShape(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldGeoShape})
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a debug representation of the schema.
func (idx *IndexDefinition) String() string {
	parts := []string{"INDEX", idx.Name}
	if len(idx.Prefixes) > 0 {
		parts = append(parts, "PREFIX")
		parts = append(parts, idx.Prefixes...)
	}
	parts = append(parts, "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name, strings.ToUpper(f.Type.String()))
		if f.Keyword {
			parts = append(parts, "KEYWORD")
		}
		if f.Multi {
			parts = append(parts, "MULTI")
		}
	}
	return strings.Join(parts, " ")
}
