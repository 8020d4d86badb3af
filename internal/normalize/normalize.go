// Package normalize canonicalizes free-text country names so that lookups
// against the risk table are insensitive to accents, punctuation, casing and
// common alternate names.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining marks, so that
// "Türkiye" and "Turkiye" fold to the same form.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Country canonicalizes a free-text country name. It is total: unknown or
// empty input passes through as its folded form, never an error.
func Country(raw string) string {
	s := strings.ToLower(raw)

	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-':
			b.WriteRune(r)
		case r == '\'', r == '’', r == '‘', r == '`', r == '´':
			// Quote variants act as word separators: "cote d'ivoire"
			// and "cote d ivoire" must match.
			b.WriteRune(' ')
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Remaining punctuation is dropped entirely.
		}
	}
	s = b.String()

	// Drop the standalone article and collapse runs of whitespace.
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if w == "the" {
			continue
		}
		kept = append(kept, w)
	}
	s = strings.Join(kept, " ")

	// Aliases are resolved exactly once; the table is verified single-hop.
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// AliasTable exposes a copy of the alias table for audit tooling.
func AliasTable() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}
