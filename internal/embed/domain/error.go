package domain

import "errors"

var (
	ErrInvalidProject = errors.New("invalid_project")
	ErrInvalidLabel   = errors.New("invalid_label")
	ErrInvalidType    = errors.New("invalid_field_type")
	ErrFieldNotFound  = errors.New("field not found")
)

// FieldTypes lists the accepted custom field input types.
var FieldTypes = map[string]struct{}{
	"text":     {},
	"textarea": {},
	"number":   {},
	"select":   {},
	"checkbox": {},
	"url":      {},
}
