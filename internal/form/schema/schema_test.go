package schema

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Schema Model Test Suite
// =============================================================================
// Parsing is the trust boundary between stored question content and the
// validation and review code, so tolerance and rejection rules are pinned here.

type SchemaSuite struct {
	suite.Suite
}

func TestSchemaSuite(t *testing.T) {
	suite.Run(t, new(SchemaSuite))
}

const addressContent = `{
	"heading": "Your address",
	"formGroup": {
		"textInputGroup": {
			"sectionName": "Address",
			"inputs": [
				{"name": "line1", "label": "Address line 1", "validation": {"required": true}},
				{"name": "town", "label": "Town or city"}
			]
		},
		"checkboxGroup": {
			"name": "roles",
			"label": "Roles",
			"items": [
				{"label": "Moderator", "value": "moderator", "conditionalFields": [
					{"type": "text", "name": "moderatorReason", "label": "Reason", "validation": {"required": true}}
				]},
				{"label": "Other", "value": "other"}
			]
		},
		"radioGroup": {
			"name": "contact",
			"label": "Contact method",
			"items": [
				{"label": "Email", "value": "email", "conditionalFields": [
					{"type": "text", "name": "emailAddress", "label": "Email address"}
				]},
				{"label": "Phone", "value": "phone"}
			]
		}
	}
}`

// =============================================================================
// Parse
// =============================================================================

func (s *SchemaSuite) TestParse() {
	s.Run("full content", func() {
		fs, err := Parse(addressContent)
		s.Require().NoError(err)
		s.Equal("Your address", fs.Heading)
		s.Require().NotNil(fs.FormGroup)
		s.Require().NotNil(fs.FormGroup.TextInputGroup)
		s.Len(fs.FormGroup.TextInputGroup.Inputs, 2)
		s.Nil(fs.FormGroup.Textarea)
		s.True(fs.FormGroup.TextInputGroup.Inputs[0].Validation.Required)
		s.Equal(ConditionalText, fs.FormGroup.CheckboxGroup.Items[0].ConditionalFields[0].Kind)
	})

	s.Run("property names are case-insensitive", func() {
		fs, err := Parse(`{"FormGroup":{"TEXTAREA":{"Name":"bio","Label":"Bio","Validation":{"MaxLength":10,"CountWords":true}}}}`)
		s.Require().NoError(err)
		s.Require().NotNil(fs.FormGroup.Textarea)
		s.Equal("bio", fs.FormGroup.Textarea.Name)
		s.Require().NotNil(fs.FormGroup.Textarea.Validation.MaxLength)
		s.Equal(10, *fs.FormGroup.Textarea.Validation.MaxLength)
		s.True(fs.FormGroup.Textarea.Validation.CountWords)
	})

	s.Run("unknown properties are ignored", func() {
		fs, err := Parse(`{"formGroup":{"textarea":{"name":"bio","label":"Bio","rows":5}},"extra":[1,2]}`)
		s.Require().NoError(err)
		s.NotNil(fs.FormGroup.Textarea)
	})

	s.Run("missing form group is not a parse error", func() {
		fs, err := Parse(`{"heading":"Information only"}`)
		s.Require().NoError(err)
		_, err = fs.RequireFormGroup()
		s.ErrorIs(err, ErrMissingFormGroup)
	})

	s.Run("malformed content", func() {
		for _, raw := range []string{"", "   ", "{", "not json", `{"formGroup":"x"}`} {
			_, err := Parse(raw)
			s.ErrorIs(err, ErrMalformed, raw)
		}
	})

	s.Run("duplicate field names are rejected", func() {
		_, err := Parse(`{"formGroup":{
			"textarea":{"name":"bio","label":"Bio"},
			"radioGroup":{"name":"choice","label":"Choice","items":[
				{"label":"A","value":"a","conditionalFields":[{"name":"BIO","label":"Again"}]}
			]}
		}}`)
		s.ErrorIs(err, ErrDuplicateName)
	})
}

// =============================================================================
// ValidationRule
// =============================================================================

func (s *SchemaSuite) TestValidationRuleIsEmpty() {
	var nilRule *ValidationRule
	s.True(nilRule.IsEmpty())
	s.True((&ValidationRule{}).IsEmpty())

	zero := 0
	s.False((&ValidationRule{MinLength: &zero}).IsEmpty(), "presence activates a bound even at zero")
	s.False((&ValidationRule{Pattern: "^a$"}).IsEmpty())
	s.False((&ValidationRule{CountWords: true}).IsEmpty())
}

// =============================================================================
// Flatten
// =============================================================================

func (s *SchemaSuite) TestFlatten() {
	fs, err := Parse(addressContent)
	s.Require().NoError(err)

	names := func(cs []Component) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.FieldName())
		}
		return out
	}

	s.Run("declaration order without selections", func() {
		s.Equal([]string{"line1", "town", "contact", "roles"}, names(fs.FormGroup.Flatten(nil)))
	})

	s.Run("active conditionals follow top-level components", func() {
		selected := func(group string) []string {
			switch group {
			case "roles":
				return []string{"moderator"}
			case "contact":
				return []string{"email"}
			}
			return nil
		}
		s.Equal([]string{"line1", "town", "contact", "roles", "emailAddress", "moderatorReason"},
			names(fs.FormGroup.Flatten(selected)))
	})

	s.Run("unselected options contribute nothing", func() {
		selected := func(string) []string { return []string{"other"} }
		s.Equal([]string{"line1", "town", "contact", "roles"}, names(fs.FormGroup.Flatten(selected)))
	})

	s.Run("nil group", func() {
		var g *FormGroup
		s.Empty(g.Flatten(nil))
	})
}

func (s *SchemaSuite) TestCompilePattern() {
	re, err := CompilePattern("^[A-Z]{3}$")
	s.Require().NoError(err)
	s.True(re.MatchString("ABC"))

	_, err = CompilePattern("([")
	s.ErrorIs(err, ErrInvalidPattern)
}
