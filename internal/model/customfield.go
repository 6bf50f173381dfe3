package model

import (
	"fmt"
	"time"
)

// FieldType is the closed set of value kinds a custom field can hold.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldDate        FieldType = "date"
	FieldBoolean     FieldType = "boolean"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
)

// ParseFieldType validates a raw field type string.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(s) {
	case FieldText, FieldNumber, FieldDate, FieldBoolean, FieldSelect, FieldMultiSelect:
		return FieldType(s), nil
	}
	return "", fmt.Errorf("unknown field type %q", s)
}

// ValidEntity reports whether s names a record type that supports custom
// fields and data import/export.
func ValidEntity(s string) bool {
	switch s {
	case "lead", "contact", "account", "opportunity", "activity", "user":
		return true
	}
	return false
}

// CustomField is an admin-defined extra attribute for one entity type.
// Options only apply to select/multiselect fields.
type CustomField struct {
	ID           string    `json:"id"`
	Entity       string    `json:"entity"`
	FieldName    string    `json:"fieldName"`
	FieldType    FieldType `json:"fieldType"`
	DisplayName  string    `json:"displayName"`
	Required     bool      `json:"required"`
	DefaultValue string    `json:"defaultValue,omitempty"`
	Options      []string  `json:"options,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
