// Package schema is the typed model of a question's form description.
//
// A question's stored content is a JSON document with an optional heading and
// body and at most one form group. The form group holds at most one of each
// component kind. Property names are matched case-insensitively and unknown
// properties are ignored.
package schema

// FormSchema is the root of a question's content.
type FormSchema struct {
	Heading   string     `json:"heading,omitempty"`
	Body      string     `json:"body,omitempty"`
	FormGroup *FormGroup `json:"formGroup,omitempty"`
}

// FormGroup holds the components of a question. A nil field means the
// component kind is not used by this question.
type FormGroup struct {
	TextInputGroup *TextInputGroup `json:"textInputGroup,omitempty"`
	Textarea       *Textarea       `json:"textarea,omitempty"`
	RadioGroup     *RadioGroup     `json:"radioGroup,omitempty"`
	CheckboxGroup  *CheckboxGroup  `json:"checkboxGroup,omitempty"`
}

// ValidationRule is a declarative set of optional constraints. Pointer fields
// distinguish "not set" from zero so that presence alone activates a check.
type ValidationRule struct {
	Required    bool   `json:"required,omitempty"`
	Unique      bool   `json:"unique,omitempty"`
	CountWords  bool   `json:"countWords,omitempty"`
	MinLength   *int   `json:"minLength,omitempty"`
	MaxLength   *int   `json:"maxLength,omitempty"`
	MinSelected *int   `json:"minSelected,omitempty"`
	MaxSelected *int   `json:"maxSelected,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
}

// IsEmpty reports whether no check is activated. An empty rule behaves as if
// the component had no rule at all.
func (r *ValidationRule) IsEmpty() bool {
	if r == nil {
		return true
	}
	return !r.Required && !r.Unique && !r.CountWords &&
		r.MinLength == nil && r.MaxLength == nil &&
		r.MinSelected == nil && r.MaxSelected == nil &&
		r.Pattern == ""
}

// TextInputGroup is a multi-row input such as an address form.
type TextInputGroup struct {
	SectionName string               `json:"sectionName,omitempty"`
	Inputs      []TextInputGroupItem `json:"inputs,omitempty"`
}

// TextInputGroupItem is one row of a TextInputGroup, validated on its own.
type TextInputGroupItem struct {
	Name       string          `json:"name"`
	Label      string          `json:"label"`
	Hint       string          `json:"hint,omitempty"`
	Validation *ValidationRule `json:"validation,omitempty"`
}

// Textarea is a free text answer.
type Textarea struct {
	SectionName string          `json:"sectionName,omitempty"`
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Hint        string          `json:"hint,omitempty"`
	Validation  *ValidationRule `json:"validation,omitempty"`
}

// RadioGroup is a single-choice group.
type RadioGroup struct {
	SectionName string          `json:"sectionName,omitempty"`
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Items       []Option        `json:"items,omitempty"`
	Validation  *ValidationRule `json:"validation,omitempty"`
}

// CheckboxGroup is a multi-choice group.
type CheckboxGroup struct {
	SectionName string          `json:"sectionName,omitempty"`
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Items       []Option        `json:"items,omitempty"`
	Validation  *ValidationRule `json:"validation,omitempty"`
}

// Option is one checkbox or radio item. Its conditional fields are only
// active when Value is among the group's selected values.
type Option struct {
	Label             string             `json:"label"`
	Value             string             `json:"value"`
	ConditionalFields []ConditionalField `json:"conditionalFields,omitempty"`
}

// ConditionalKind is the input type of a ConditionalField.
type ConditionalKind string

const (
	ConditionalText   ConditionalKind = "text"
	ConditionalSelect ConditionalKind = "select"
)

// ConditionalField is a text input or select revealed by a selected option.
type ConditionalField struct {
	Kind       ConditionalKind `json:"type,omitempty"`
	Name       string          `json:"name"`
	Label      string          `json:"label"`
	Options    []SelectOption  `json:"options,omitempty"`
	Validation *ValidationRule `json:"validation,omitempty"`
}

// SelectOption is one entry of a conditional select.
type SelectOption struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}
