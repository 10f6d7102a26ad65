// Package validation checks a submitted answer against a question's form
// schema.
//
// The engine is pure apart from the uniqueness collaborator: it flattens the
// schema into validatable components, resolves each component's value from
// the answer and evaluates the component's rule in a fixed precedence,
// stopping at the first failing check.
package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"formflow/internal/form/answer"
	"formflow/internal/form/schema"
	"formflow/pkg/domain"
	textutil "formflow/pkg/platform/strings"
)

// ErrNoUniquenessChecker is returned when a rule declares Unique but the
// engine was built without a checker.
var ErrNoUniquenessChecker = errors.New("uniqueness checker is not configured")

// UniquenessChecker reports whether a value is already recorded for a field.
// Errors must be returned, never reported as "not a duplicate".
type UniquenessChecker interface {
	Exists(ctx context.Context, questionID domain.QuestionID, field, value string) (bool, error)
}

// Engine validates answers. It holds no per-call state and is safe for
// concurrent use when its checker is.
type Engine struct {
	unique UniquenessChecker
}

// Option configures an Engine.
type Option func(*Engine)

// WithUniquenessChecker sets the collaborator used for Unique rules.
func WithUniquenessChecker(c UniquenessChecker) Option {
	return func(e *Engine) {
		e.unique = c
	}
}

// NewEngine builds an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ValidateRaw parses the stored content and the submitted payload, then
// validates. Parse failures short-circuit: schema.ErrMalformed,
// schema.ErrMissingFormGroup or answer.ErrMalformed is returned and no field
// is checked.
func (e *Engine) ValidateRaw(ctx context.Context, questionID domain.QuestionID, content, payload string) ([]ErrorItem, error) {
	fs, err := schema.Parse(content)
	if err != nil {
		return nil, err
	}
	ans, err := answer.Parse(payload)
	if err != nil {
		return nil, err
	}
	return e.Validate(ctx, questionID, fs, ans)
}

// Validate returns the field errors for ans. An empty result means the answer
// is valid. A non-nil error means validation could not complete.
func (e *Engine) Validate(ctx context.Context, questionID domain.QuestionID, fs *schema.FormSchema, ans *answer.Value) ([]ErrorItem, error) {
	group, err := fs.RequireFormGroup()
	if err != nil {
		return nil, err
	}
	if ans == nil {
		ans = &answer.Value{Kind: answer.KindObject}
	}

	items := []ErrorItem{}
	for _, f := range bind(group, ans) {
		rule := f.component.Rule()
		if rule.IsEmpty() {
			continue
		}
		item, failed, err := e.check(ctx, questionID, f.component, rule, f.value)
		if err != nil {
			return nil, err
		}
		if failed {
			items = append(items, item)
		}
	}
	return items, nil
}

func (e *Engine) check(ctx context.Context, questionID domain.QuestionID, c schema.Component, rule *schema.ValidationRule, v *answer.Value) (ErrorItem, bool, error) {
	name, label := c.FieldName(), displayLabel(c)

	switch c.(type) {
	case *schema.RadioGroup, *schema.CheckboxGroup:
		selected := textutil.DedupeAndTrim(v.Strings())
		if len(selected) == 0 {
			if rule.Required {
				return requiredError(name, label), true, nil
			}
			return ErrorItem{}, false, nil
		}
		if rule.Unique {
			if item, dup, err := e.checkUnique(ctx, questionID, name, label, uniqueValue(c, v)); err != nil || dup {
				return item, dup, err
			}
		}
		return checkSelection(name, label, rule, len(selected))

	case *schema.TextInputGroupItem, *schema.Textarea, *schema.ConditionalField:
		value := strings.TrimSpace(v.Scalar())
		if value == "" {
			if rule.Required {
				return requiredError(name, label), true, nil
			}
			return ErrorItem{}, false, nil
		}
		if rule.Unique {
			if item, dup, err := e.checkUnique(ctx, questionID, name, label, uniqueValue(c, v)); err != nil || dup {
				return item, dup, err
			}
		}
		if item, failed := checkLength(name, label, rule, value); failed {
			return item, true, nil
		}
		return checkPattern(name, label, rule, value)

	default:
		return ErrorItem{}, false, fmt.Errorf("unsupported component %T", c)
	}
}

func (e *Engine) checkUnique(ctx context.Context, questionID domain.QuestionID, name, label, value string) (ErrorItem, bool, error) {
	if e.unique == nil {
		return ErrorItem{}, false, ErrNoUniquenessChecker
	}
	exists, err := e.unique.Exists(ctx, questionID, name, value)
	if err != nil {
		return ErrorItem{}, false, fmt.Errorf("checking uniqueness of %s: %w", name, err)
	}
	if !exists {
		return ErrorItem{}, false, nil
	}
	return uniqueError(name, label, value), true, nil
}

func checkLength(name, label string, rule *schema.ValidationRule, value string) (ErrorItem, bool) {
	if rule.MinLength == nil && rule.MaxLength == nil {
		return ErrorItem{}, false
	}
	n := textutil.CharCount(value)
	if rule.CountWords {
		n = textutil.WordCount(value)
	}
	tooShort := rule.MinLength != nil && n < *rule.MinLength
	tooLong := rule.MaxLength != nil && n > *rule.MaxLength
	if !tooShort && !tooLong {
		return ErrorItem{}, false
	}
	return lengthError(name, label, rule.MinLength, rule.MaxLength, rule.CountWords), true
}

func checkPattern(name, label string, rule *schema.ValidationRule, value string) (ErrorItem, bool, error) {
	if rule.Pattern == "" {
		return ErrorItem{}, false, nil
	}
	re, err := schema.CompilePattern(rule.Pattern)
	if err != nil {
		return ErrorItem{}, false, err
	}
	if re.MatchString(value) {
		return ErrorItem{}, false, nil
	}
	return patternError(name, label), true, nil
}

func checkSelection(name, label string, rule *schema.ValidationRule, count int) (ErrorItem, bool, error) {
	if rule.MinSelected != nil && count < *rule.MinSelected {
		return minSelectedError(name, label, *rule.MinSelected), true, nil
	}
	if rule.MaxSelected != nil && count > *rule.MaxSelected {
		return maxSelectedError(name, label, *rule.MaxSelected), true, nil
	}
	return ErrorItem{}, false, nil
}

type boundField struct {
	component schema.Component
	value     *answer.Value
}

// bind pairs every active component with its submitted value. Top-level
// fields are looked up directly; conditional fields may sit anywhere in the
// answer tree.
func bind(group *schema.FormGroup, ans *answer.Value) []boundField {
	topLevel := len(group.TopLevel())
	components := group.Flatten(func(name string) []string {
		return selections(ans, name)
	})
	out := make([]boundField, 0, len(components))
	for i, c := range components {
		var v *answer.Value
		if i < topLevel {
			v, _ = ans.Lookup(c.FieldName())
		} else {
			v, _ = ans.Resolve(c.FieldName())
		}
		out = append(out, boundField{component: c, value: v})
	}
	return out
}

// uniqueValue is the form in which a field's value is checked for
// uniqueness: the trimmed scalar for text fields, the joined selections for
// groups.
func uniqueValue(c schema.Component, v *answer.Value) string {
	switch c.(type) {
	case *schema.RadioGroup, *schema.CheckboxGroup:
		return strings.Join(textutil.DedupeAndTrim(v.Strings()), ",")
	default:
		return strings.TrimSpace(v.Scalar())
	}
}

// selections returns the trimmed selected values of a group field.
func selections(ans *answer.Value, name string) []string {
	v, ok := ans.Lookup(name)
	if !ok {
		return nil
	}
	return textutil.DedupeAndTrim(v.Strings())
}

func displayLabel(c schema.Component) string {
	if l := strings.TrimSpace(c.FieldLabel()); l != "" {
		return l
	}
	return c.FieldName()
}
