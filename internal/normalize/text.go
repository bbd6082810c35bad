package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CollapseWhitespace trims the string and reduces every whitespace run
// (spaces, tabs, newlines) to a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalizeDisplay prepares a field for display: NFC normalization and
// whitespace collapsing, original casing preserved.
func CanonicalizeDisplay(s string) string {
	return CollapseWhitespace(norm.NFC.String(s))
}

// CanonicalizeMatch prepares a field for matching and identity derivation:
// NFC normalization, whitespace collapsing and lower-casing. Matching fields
// are never shown to users, so casing loss is acceptable.
func CanonicalizeMatch(s string) string {
	return strings.ToLower(CanonicalizeDisplay(s))
}
