// Package slug builds URL path segments from display text.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate joins parts with spaces and turns the result into a lowercase,
// hyphen-separated slug. Accents are dropped rather than the whole letter.
//
// Examples:
//   - "Camión Año 2020" → "camion-ano-2020"
//   - "Mercedes-Benz", "Clase C" → "mercedes-benz-clase-c"
//   - "  ¡Único dueño!  " → "unico-dueno"
func Generate(parts ...string) string {
	s := strings.ToLower(strings.Join(parts, " "))

	// A transform chain keeps state, so each call builds its own.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}
