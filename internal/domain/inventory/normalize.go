package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName normaliza un nombre para búsqueda: minúsculas, sin acentos y sin
// espacios sobrantes ("Zíper 20cm" -> "ziper 20cm"). Se persiste junto al ítem
// para que el filtro de listado sea insensible a mayúsculas y tildes.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}
