package analysis

import (
	"strings"
	"unicode"
)

// NormalizeInput canonicalizes a free-text food description into the key used
// to address the food cache: lowercase, punctuation stripped, whitespace runs
// collapsed, ends trimmed. Descriptions differing only in casing, punctuation
// or incidental spacing map to the same key. Whitespace-only input normalizes
// to the empty string.
func NormalizeInput(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	for _, r := range strings.ToLower(input) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
