package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses interior whitespace
// runs to a single space, so "  Desk   A " and "Desk A" store the same.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeDescription(description string) string {
	return TrimAndNormalize(description)
}
