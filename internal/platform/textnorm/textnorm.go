// Package textnorm normalises user-entered text before it is validated and
// stored, so full-width input from Japanese IMEs compares equal to ASCII.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Text trims s and puts it in NFC. Use for names and titles.
func Text(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Identifier trims s and folds full-width letters, digits and punctuation to
// their narrow forms. Use for ISBNs, member numbers and emails.
func Identifier(s string) string {
	return strings.TrimSpace(width.Narrow.String(strings.TrimSpace(s)))
}
