// README: Place-name normalization for text-based fallback search.
package geo

import (
	"strings"
	"unicode"
)

// arabicFold maps common Arabic letter variants to a canonical form so that
// spelling variations of the same city name compare equal.
var arabicFold = map[rune]rune{
	'أ': 'ا',
	'إ': 'ا',
	'آ': 'ا',
	'ى': 'ي',
	'ؤ': 'و',
	'ة': 'ه',
}

// NormalizePlace lower-cases a place name, drops the administrative words
// "governorate"/"محافظة", strips everything that is not a Latin letter, a
// digit, an Arabic letter or whitespace, folds Arabic variant letters, and
// collapses runs of whitespace to a single space.
func NormalizePlace(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "محافظة", "")
	s = strings.ReplaceAll(s, "governorate", "")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case r >= 0x0621 && r <= 0x064A:
			if folded, ok := arabicFold[r]; ok {
				r = folded
			}
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
