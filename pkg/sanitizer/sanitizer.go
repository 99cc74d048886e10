// Package sanitizer provides input normalization for fleet data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Plate numbers: Uppercase, strip whitespace and separators - "34 abc 123" becomes "34ABC123"
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Slices: Remove duplicates and empty values after normalization
package sanitizer

import (
	"strings"
	"unicode"
)

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

func NormalizeBrand(brand string) string {
	return TrimAndNormalize(brand)
}

func NormalizeModel(model string) string {
	return TrimAndNormalize(model)
}
