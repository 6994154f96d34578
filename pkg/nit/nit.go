// Package nit normaliza el NIT (identificación tributaria) con el que se busca una empresa.
// "900.123.456-1", "900123456-1" y "9001234561" son el mismo NIT.
package nit

import (
	"strings"
	"unicode"
)

// MinDigits dígitos mínimos de un NIT de persona jurídica (sin dígito de verificación).
const MinDigits = 9

// Digits conserva solo los dígitos de s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equal compara dos NIT ignorando puntos, guiones y espacios. Entradas con menos de MinDigits
// dígitos nunca coinciden, para que un ID corto no se confunda con un NIT.
func Equal(a, b string) bool {
	da, db := Digits(a), Digits(b)
	return len(da) >= MinDigits && da == db
}
