// Package textnorm normaliza texto para comparaciones sin acentos ni mayúsculas ("Conceição" == "conceicao").
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold quita diacríticos, recorta espacios y pasa a minúsculas.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Contains indica si needle aparece en haystack ignorando acentos y mayúsculas.
// Un needle vacío siempre coincide.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// Equal compara ignorando acentos y mayúsculas.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
