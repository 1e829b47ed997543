package lyrics

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and drops combining marks, so "café"
// normalizes the same as "cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeWord reduces a word to its comparison form: diacritics stripped,
// apostrophes and all other non-alphanumeric characters removed, case folded.
// Grading and blank selection must use the same form so they can never disagree.
func NormalizeWord(word string) string {
	stripped, _, err := transform.String(stripMarks, word)
	if err != nil {
		stripped = word
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
