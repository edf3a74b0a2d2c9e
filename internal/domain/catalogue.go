package domain

import "strings"

// KeywordSuffix addresses the exact-match sub-field of a text field.
const KeywordSuffix = ".keyword"

// Catalogue item fields referenced by the query compiler.
const (
	FieldID           = "id"
	FieldType         = "type"
	FieldLabel        = "label"
	FieldTags         = "tags"
	FieldDescription  = "description"
	FieldInstance     = "instance"
	FieldProvider     = "provider"
	FieldFileFormat   = "fileFormat"
	FieldAccessPolicy = "accessPolicy"
	FieldOwnerUserID  = "ownerUserId"
	FieldUploadStatus = "uploadStatus"
	// FieldCreatedAt is the creation timestamp; it is a date field with no keyword sub-field.
	FieldCreatedAt = "itemCreatedAt"
	// FieldLocationPrefix prefixes every location attribute.
	FieldLocationPrefix = "location"
	// FieldDocID is injected into geo-enriched results.
	FieldDocID = "doc_id"
	// FieldSummary and FieldWordVector are internal and never returned to clients.
	FieldSummary    = "_summary"
	FieldWordVector = "_word_vector"
)

// AccessPolicy is the per-document visibility tag.
type AccessPolicy string

// Access policies.
const (
	AccessOpen       AccessPolicy = "OPEN"
	AccessRestricted AccessPolicy = "RESTRICTED"
	AccessPrivate    AccessPolicy = "PRIVATE"
)

// Item categories.
const (
	TypeAiModel  = "adex:AiModel"
	TypeDataBank = "adex:DataBank"
	TypeApps     = "adex:Apps"
)

// UploadGatedTypes are hidden until their upload status is true.
var UploadGatedTypes = []string{TypeAiModel, TypeDataBank}

// AssetTypes are the item categories returned by asset-only searches.
var AssetTypes = []string{TypeAiModel, TypeDataBank, TypeApps}

// Keyword returns the keyword sub-field of field unless it is already one.
func Keyword(field string) string {
	if strings.HasSuffix(field, KeywordSuffix) {
		return field
	}
	return field + KeywordSuffix
}

// IsValidFieldName reports whether s is a dotted attribute path of [a-zA-Z0-9_] segments.
func IsValidFieldName(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != '.' {
			return false
		}
	}
	return true
}
