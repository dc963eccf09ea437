package utils

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Preview renders user or upstream text as a single log line of at most limit
// runes. Whitespace runs, newlines included, collapse to one space. A cut
// preview ends with the original rune count, e.g. "hello… (11 chars)".
func Preview(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	flat := strings.Join(strings.Fields(s), " ")
	n := utf8.RuneCountInString(flat)
	if n <= limit {
		return flat
	}

	runes := []rune(flat)
	return string(runes[:limit]) + "… (" + strconv.Itoa(n) + " chars)"
}
