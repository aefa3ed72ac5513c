package config

import (
	"strings"
	"unicode"
)

const unnamed = "unnamed"

// CleanFileName makes single path element out of in. Separators and
// characters reserved by the platform become '_', control characters and
// leading dots or spaces are dropped.
func CleanFileName(in string) string {
	out := strings.TrimLeft(strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case strings.ContainsRune(reservedNameChars, r):
			return '_'
		}
		return r
	}, in), ". ")
	if len(out) == 0 {
		return unnamed
	}
	return out
}
