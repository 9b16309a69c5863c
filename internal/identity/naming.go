package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func normalize(raw string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}

// kebab keeps letters, digits and dots; every other run of runes becomes a
// single dash. Leading and trailing separators and dots are dropped.
func kebab(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pending = true
	}
	return strings.Trim(b.String(), ".-")
}

// upperSnake replaces every run of non-alphanumeric runes with a single
// underscore and upper-cases the rest.
func upperSnake(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		pending = true
	}
	return b.String()
}
