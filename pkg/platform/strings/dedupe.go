// Package strings holds text helpers shared by answer validation and the
// uniqueness index.
package strings

import (
	"strings"
	"unicode/utf8"
)

// DedupeAndTrim trims each value and drops blanks and repeats, keeping the
// first occurrence order.
//
//	DedupeAndTrim([]string{"  a ", "b", "a", "", "  "})
//	// []string{"a", "b"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// Fold normalizes a value for case-insensitive comparison.
func Fold(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// WordCount counts whitespace-separated tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// CharCount counts the characters of s after trimming surrounding space.
func CharCount(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
