package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Schema errors are terminal for a request: no partial validation is
// attempted when one is returned.
var (
	ErrMalformed        = errors.New("question content is not valid JSON")
	ErrMissingFormGroup = errors.New("question content has no form group")
	ErrInvalidPattern   = errors.New("question content has an invalid pattern")
	ErrDuplicateName    = errors.New("question content repeats a field name")
)

// Parse decodes stored question content. Property names match
// case-insensitively and unknown properties are ignored.
func Parse(raw string) (*FormSchema, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMalformed
	}
	var s FormSchema
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := s.checkNames(); err != nil {
		return nil, err
	}
	return &s, nil
}

// RequireFormGroup returns the form group or ErrMissingFormGroup.
func (s *FormSchema) RequireFormGroup() (*FormGroup, error) {
	if s == nil || s.FormGroup == nil {
		return nil, ErrMissingFormGroup
	}
	return s.FormGroup, nil
}

// checkNames enforces that field names are unique within one schema,
// including every conditional field regardless of its parent option.
func (s *FormSchema) checkNames() error {
	if s.FormGroup == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, c := range s.FormGroup.all() {
		name := strings.ToLower(c.FieldName())
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, c.FieldName())
		}
		seen[name] = struct{}{}
	}
	return nil
}

// all lists every component including inactive conditional fields.
func (g *FormGroup) all() []Component {
	out := g.TopLevel()
	var options []Option
	if g.RadioGroup != nil {
		options = append(options, g.RadioGroup.Items...)
	}
	if g.CheckboxGroup != nil {
		options = append(options, g.CheckboxGroup.Items...)
	}
	for i := range options {
		for j := range options[i].ConditionalFields {
			out = append(out, &options[i].ConditionalFields[j])
		}
	}
	return out
}

// CompilePattern compiles a rule's pattern, reporting ErrInvalidPattern.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}
