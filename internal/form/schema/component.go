package schema

// Component is the validatable capability shared by every form element.
// The set of implementations is closed: TextInputGroupItem, Textarea,
// RadioGroup, CheckboxGroup and ConditionalField. Consumers dispatch with
// exhaustive type switches over these five pointer types.
type Component interface {
	FieldName() string
	FieldLabel() string
	Rule() *ValidationRule
	component()
}

var (
	_ Component = (*TextInputGroupItem)(nil)
	_ Component = (*Textarea)(nil)
	_ Component = (*RadioGroup)(nil)
	_ Component = (*CheckboxGroup)(nil)
	_ Component = (*ConditionalField)(nil)
)

func (c *TextInputGroupItem) FieldName() string     { return c.Name }
func (c *TextInputGroupItem) FieldLabel() string    { return c.Label }
func (c *TextInputGroupItem) Rule() *ValidationRule { return c.Validation }
func (c *TextInputGroupItem) component()            {}

func (c *Textarea) FieldName() string     { return c.Name }
func (c *Textarea) FieldLabel() string    { return c.Label }
func (c *Textarea) Rule() *ValidationRule { return c.Validation }
func (c *Textarea) component()            {}

func (c *RadioGroup) FieldName() string     { return c.Name }
func (c *RadioGroup) FieldLabel() string    { return c.Label }
func (c *RadioGroup) Rule() *ValidationRule { return c.Validation }
func (c *RadioGroup) component()            {}

func (c *CheckboxGroup) FieldName() string     { return c.Name }
func (c *CheckboxGroup) FieldLabel() string    { return c.Label }
func (c *CheckboxGroup) Rule() *ValidationRule { return c.Validation }
func (c *CheckboxGroup) component()            {}

func (c *ConditionalField) FieldName() string     { return c.Name }
func (c *ConditionalField) FieldLabel() string    { return c.Label }
func (c *ConditionalField) Rule() *ValidationRule { return c.Validation }
func (c *ConditionalField) component()            {}

// SelectionFunc returns the selected values for a group field name.
type SelectionFunc func(groupName string) []string

// TopLevel lists the populated components of the group in declaration order:
// text input rows, textarea, radio group, checkbox group.
func (g *FormGroup) TopLevel() []Component {
	if g == nil {
		return nil
	}
	var out []Component
	if g.TextInputGroup != nil {
		for i := range g.TextInputGroup.Inputs {
			out = append(out, &g.TextInputGroup.Inputs[i])
		}
	}
	if g.Textarea != nil {
		out = append(out, g.Textarea)
	}
	if g.RadioGroup != nil {
		out = append(out, g.RadioGroup)
	}
	if g.CheckboxGroup != nil {
		out = append(out, g.CheckboxGroup)
	}
	return out
}

// Flatten lists the top-level components followed by the conditional fields
// whose parent option is selected, radio options first, then checkbox
// options, each in option order.
func (g *FormGroup) Flatten(selected SelectionFunc) []Component {
	out := g.TopLevel()
	if g == nil || selected == nil {
		return out
	}
	if g.RadioGroup != nil {
		out = append(out, ActiveConditionals(g.RadioGroup.Items, selected(g.RadioGroup.Name))...)
	}
	if g.CheckboxGroup != nil {
		out = append(out, ActiveConditionals(g.CheckboxGroup.Items, selected(g.CheckboxGroup.Name))...)
	}
	return out
}

// ActiveConditionals returns the conditional fields of options whose Value is
// in selected, in option order.
func ActiveConditionals(options []Option, selected []string) []Component {
	if len(options) == 0 || len(selected) == 0 {
		return nil
	}
	chosen := make(map[string]struct{}, len(selected))
	for _, v := range selected {
		chosen[v] = struct{}{}
	}
	var out []Component
	for i := range options {
		if _, ok := chosen[options[i].Value]; !ok {
			continue
		}
		for j := range options[i].ConditionalFields {
			out = append(out, &options[i].ConditionalFields[j])
		}
	}
	return out
}
