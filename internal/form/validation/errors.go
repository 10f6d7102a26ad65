package validation

import (
	"fmt"
	"strconv"
)

// Kind classifies a field error independently of its message text.
type Kind string

const (
	KindRequired  Kind = "required"
	KindUnique    Kind = "unique"
	KindLength    Kind = "length"
	KindPattern   Kind = "pattern"
	KindSelection Kind = "selection"
)

// ErrorItem is one failing field. At most one is produced per component.
type ErrorItem struct {
	PropertyName string `json:"propertyName"`
	ErrorMessage string `json:"errorMessage"`
	Kind         Kind   `json:"kind"`
}

func requiredError(name, label string) ErrorItem {
	return ErrorItem{PropertyName: name, Kind: KindRequired, ErrorMessage: "Enter " + label}
}

func uniqueError(name, label, value string) ErrorItem {
	return ErrorItem{
		PropertyName: name,
		Kind:         KindUnique,
		ErrorMessage: fmt.Sprintf("The %s %q already exists in our records", label, value),
	}
}

func lengthError(name, label string, min, max *int, words bool) ErrorItem {
	var msg string
	switch {
	case min != nil && max != nil:
		msg = fmt.Sprintf("%s must be between %d and %d %s", label, *min, *max, unit(words))
	case max != nil:
		msg = fmt.Sprintf("%s must be %s or less", label, quantity(*max, words))
	default:
		msg = fmt.Sprintf("%s must be %s or more", label, quantity(*min, words))
	}
	return ErrorItem{PropertyName: name, Kind: KindLength, ErrorMessage: msg}
}

func patternError(name, label string) ErrorItem {
	return ErrorItem{PropertyName: name, Kind: KindPattern, ErrorMessage: "Enter a valid " + label}
}

func minSelectedError(name, label string, min int) ErrorItem {
	return ErrorItem{
		PropertyName: name,
		Kind:         KindSelection,
		ErrorMessage: fmt.Sprintf("Select at least %d options for %s", min, label),
	}
}

func maxSelectedError(name, label string, max int) ErrorItem {
	return ErrorItem{
		PropertyName: name,
		Kind:         KindSelection,
		ErrorMessage: fmt.Sprintf("Select no more than %d options for %s", max, label),
	}
}

func quantity(n int, words bool) string {
	return strconv.Itoa(n) + " " + unit(words)
}

// unit stays plural for every bound, including 1, to keep messages stable
// across rule values.
func unit(words bool) string {
	if words {
		return "words"
	}
	return "characters"
}
