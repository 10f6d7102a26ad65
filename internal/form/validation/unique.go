package validation

import (
	"formflow/internal/form/answer"
	"formflow/internal/form/schema"
)

// FieldValue is one recorded value of a field whose rule is Unique.
type FieldValue struct {
	Field string
	Value string
}

// UniqueValues returns the non-empty values ans records for Unique fields, in
// the same form the engine passes to the UniquenessChecker. Inactive
// conditional fields are ignored.
func UniqueValues(fs *schema.FormSchema, ans *answer.Value) []FieldValue {
	if fs == nil || fs.FormGroup == nil || ans == nil {
		return nil
	}
	var out []FieldValue
	for _, f := range bind(fs.FormGroup, ans) {
		rule := f.component.Rule()
		if rule == nil || !rule.Unique {
			continue
		}
		if v := uniqueValue(f.component, f.value); v != "" {
			out = append(out, FieldValue{Field: f.component.FieldName(), Value: v})
		}
	}
	return out
}
