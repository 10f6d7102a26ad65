// Package review rebuilds a check-your-answers view from a question's schema
// and its stored answer.
//
// Building is lenient: an answer that cannot be parsed or a field that cannot
// be located renders NotProvided instead of failing the review.
package review

import (
	"strings"

	"formflow/internal/form/answer"
	"formflow/internal/form/schema"
	textutil "formflow/pkg/platform/strings"
)

// NotProvided is rendered for any field without a value.
const NotProvided = "Not provided"

// Item is one question and answer pair.
type Item struct {
	QuestionText string   `json:"questionText"`
	AnswerValue  []string `json:"answerValue"`
	QuestionURL  string   `json:"questionUrl"`
}

// Section groups the items of one component under its section name.
type Section struct {
	SectionHeading string `json:"sectionHeading,omitempty"`
	Items          []Item `json:"items"`
}

// Build returns one section per populated component of the form group, in
// declaration order. Sections without items are dropped.
func Build(fs *schema.FormSchema, rawAnswer, questionURL string) []Section {
	if fs == nil || fs.FormGroup == nil {
		return []Section{}
	}
	b := builder{ans: answer.ParseLenient(rawAnswer), url: questionURL, sections: []Section{}}
	g := fs.FormGroup

	if g.TextInputGroup != nil {
		var items []Item
		for i := range g.TextInputGroup.Inputs {
			items = append(items, b.item(&g.TextInputGroup.Inputs[i]))
		}
		b.add(g.TextInputGroup.SectionName, items)
	}
	if g.Textarea != nil {
		b.add(g.Textarea.SectionName, []Item{b.item(g.Textarea)})
	}
	if g.RadioGroup != nil {
		b.add(g.RadioGroup.SectionName, b.group(g.RadioGroup, g.RadioGroup.Items))
	}
	if g.CheckboxGroup != nil {
		b.add(g.CheckboxGroup.SectionName, b.group(g.CheckboxGroup, g.CheckboxGroup.Items))
	}
	return b.sections
}

// BuildRaw parses content and builds the review. Content that cannot be
// parsed yields no sections and the parse error.
func BuildRaw(content, rawAnswer, questionURL string) ([]Section, error) {
	fs, err := schema.Parse(content)
	if err != nil {
		return nil, err
	}
	return Build(fs, rawAnswer, questionURL), nil
}

type builder struct {
	ans      *answer.Value
	url      string
	sections []Section
}

func (b *builder) add(heading string, items []Item) {
	if len(items) == 0 {
		return
	}
	b.sections = append(b.sections, Section{SectionHeading: heading, Items: items})
}

// group emits the group's own item followed by the items of the conditional
// fields revealed by its selected options.
func (b *builder) group(c schema.Component, options []schema.Option) []Item {
	items := []Item{b.item(c)}
	var selected []string
	if v, ok := b.ans.Resolve(c.FieldName()); ok {
		selected = textutil.DedupeAndTrim(v.Strings())
	}
	for _, cond := range schema.ActiveConditionals(options, selected) {
		items = append(items, b.item(cond))
	}
	return items
}

func (b *builder) item(c schema.Component) Item {
	return Item{
		QuestionText: questionText(c),
		AnswerValue:  b.value(c.FieldName()),
		QuestionURL:  b.url,
	}
}

func (b *builder) value(name string) []string {
	v, ok := b.ans.Resolve(name)
	if !ok {
		return []string{NotProvided}
	}
	var out []string
	for _, s := range v.Strings() {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{NotProvided}
	}
	return out
}

func questionText(c schema.Component) string {
	if l := strings.TrimSpace(c.FieldLabel()); l != "" {
		return l
	}
	return c.FieldName()
}
