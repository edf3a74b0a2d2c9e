package db

import "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"

// Catalogue location attributes.
const (
	FieldLocationGeometry = domain.FieldLocationPrefix + ".geometry"
	FieldLocationAddress  = domain.FieldLocationPrefix + ".address"
)

// CatalogueIndex returns the schema of the catalogue item index.
// prefix is the key prefix documents are stored under (ignored by backends without key spaces).
func CatalogueIndex(name, prefix string) (*IndexDefinition, error) {
	b := NewIndex(name).
		Keyword(domain.FieldID).
		Keyword(domain.FieldType).
		Keyword(domain.FieldLabel).
		KeywordList(domain.FieldTags).
		Text(domain.FieldDescription).
		Keyword(domain.FieldInstance).
		Keyword(domain.FieldProvider).
		Keyword(domain.FieldFileFormat).
		Keyword(domain.FieldAccessPolicy).
		Keyword(domain.FieldOwnerUserID).
		Bool(domain.FieldUploadStatus).
		Date(domain.FieldCreatedAt).
		Text(FieldLocationAddress).
		GeoShape(FieldLocationGeometry)
	if prefix != "" {
		b = b.Prefix(prefix)
	}
	return b.Build()
}
