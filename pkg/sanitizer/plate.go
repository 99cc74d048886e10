package sanitizer

import (
	"strings"
	"unicode"
)

// NormalizePlate canonicalizes a plate number: uppercase, with whitespace and
// common separators removed. Plates are compared and indexed in this form, so
// "34 ab 12" and "34-AB-12" refer to the same physical unit.
func NormalizePlate(plate string) string {
	var result strings.Builder

	for _, r := range strings.ToUpper(plate) {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}

// NormalizePlates normalizes every plate in the slice, dropping empties and
// duplicates while preserving first-seen order. The stored order is load-bearing:
// availability selection always picks the first free plate in this order.
func NormalizePlates(plates []string) []string {
	seen := make(map[string]struct{}, len(plates))
	result := make([]string, 0, len(plates))

	for _, plate := range plates {
		normalized := NormalizePlate(plate)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}

	return result
}
