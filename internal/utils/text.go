package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Lower returns the lower-case form of s suitable for substring matching.
// A new Caser is built per call because cases.Caser is not safe for concurrent use.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// NormalizeInput composes unicode sequences and trims surrounding whitespace
// of text typed by a user.
func NormalizeInput(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
