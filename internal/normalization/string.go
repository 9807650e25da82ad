package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParseInputString is the comparison form of emails and ids: trimmed and
// lower-cased.
func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

func ParseInputStringPtr(input *string) *string {
	if input == nil {
		return nil
	}
	normalized := ParseInputString(*input)
	return &normalized
}

// Text trims display text and codes, keeping their case.
func Text(input string) string {
	return strings.TrimSpace(input)
}

// FoldAccents strips combining marks: "Categoría" -> "Categoria".
func FoldAccents(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}

// HeaderKey is the comparison form of a spreadsheet header or alias:
// trimmed, lower-cased, accent-folded, inner whitespace collapsed.
func HeaderKey(input string) string {
	folded := FoldAccents(ParseInputString(strings.TrimPrefix(input, "\ufeff")))
	return strings.Join(strings.Fields(folded), " ")
}

// Username trims a login name; usernames stay case-sensitive.
func Username(input string) string {
	return strings.TrimSpace(input)
}
