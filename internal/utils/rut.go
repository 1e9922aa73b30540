package utils

import "strings"

// NormalizeRUT strips dots and whitespace from a Chilean RUT and uppercases
// the check digit, so "12.345.678-k" and "12345678-K" compare equal.
func NormalizeRUT(rut string) string {
	rut = strings.TrimSpace(rut)
	rut = strings.ReplaceAll(rut, ".", "")
	rut = strings.ReplaceAll(rut, " ", "")
	return strings.ToUpper(rut)
}
