// Package slug genera slugs URL-safe para vehículos y listados.
// Formato canónico: marca-modelo-año (ej. "mazda-3i-2024"); los acentos se
// eliminan vía descomposición Unicode para que "Citroën" produzca "citroen".
package slug

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Make normaliza texto libre a un slug: minúsculas, sin acentos,
// separadores colapsados a un solo guion.
func Make(s string) string {
	clean, _, err := transform.String(stripAccents, s)
	if err != nil {
		clean = s
	}
	clean = strings.ToLower(clean)

	var b strings.Builder
	lastDash := true // evita guion inicial
	for _, r := range clean {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ForVehicle construye el slug base marca-modelo-año. Devuelve "" si no hay
// datos suficientes; el caller decide el fallback.
func ForVehicle(marca, modelo string, ano int) string {
	parts := make([]string, 0, 3)
	if m := Make(marca); m != "" {
		parts = append(parts, m)
	}
	if m := Make(modelo); m != "" {
		parts = append(parts, m)
	}
	if ano > 0 {
		parts = append(parts, fmt.Sprintf("%d", ano))
	}
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts, "-")
}

// WithSuffix agrega el sufijo numérico de desambiguación: base-2, base-3...
func WithSuffix(base string, n int) string {
	return fmt.Sprintf("%s-%d", base, n)
}
