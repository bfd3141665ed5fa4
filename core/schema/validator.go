package schema

import (
	"fmt"
)

// Issue represents a validation problem found in a document.
type Issue struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Path        string `json:"path,omitempty"`
	Severity    string `json:"severity,omitempty"` // e.g., "error", "warning"
	Description string `json:"description,omitempty"`
}

// ValidationResult is the outcome of validating a document.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// Validator checks documents against a schema: required fields must be
// present and values must match their declared primitive type.
type Validator struct {
	schema *Schema
}

// NewValidator creates a validator for the given schema. The returned
// validator is stateless between calls and safe for concurrent use.
func NewValidator(s *Schema) *Validator {
	return &Validator{schema: s}
}

// Validate checks a document against the schema. It returns whether the
// document is valid and the issues found. The loose parameter skips
// missing-required-field checks, which is useful for partial updates.
func (v *Validator) Validate(doc Document, loose bool) (bool, []Issue) {
	issues := make([]Issue, 0)

	for _, path := range v.schema.Paths() {
		def := v.schema.Path(path)
		value, present := doc[path]

		if !present || value == nil {
			if !loose && def.Required != nil && *def.Required {
				issues = append(issues, Issue{
					Code:     "REQUIRED_FIELD_MISSING",
					Message:  fmt.Sprintf("required field %q is missing", path),
					Path:     path,
					Severity: "error",
				})
			}
			continue
		}

		if !typeMatches(def.Type, value) {
			issues = append(issues, Issue{
				Code:     "TYPE_MISMATCH",
				Message:  fmt.Sprintf("field %q expects type %s, got %T", path, def.Type, value),
				Path:     path,
				Severity: "error",
			})
		}
	}

	return len(issues) == 0, issues
}

// typeMatches reports whether a value is acceptable for a field type.
// Numeric checks accept the types produced both by Go callers and by a JSON
// round-trip, where every number decodes as float64.
func typeMatches(t FieldType, value any) bool {
	switch t {
	case FieldTypeString:
		_, ok := value.(string)
		return ok
	case FieldTypeBoolean:
		_, ok := value.(bool)
		return ok
	case FieldTypeInteger:
		switch n := value.(type) {
		case int, int32, int64:
			return true
		case float64:
			return n == float64(int64(n))
		default:
			return false
		}
	case FieldTypeNumber:
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return true
		default:
			return false
		}
	default:
		// Unknown types are not validated.
		return true
	}
}
