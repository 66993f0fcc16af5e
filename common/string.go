package common

import (
	"strings"
	"unicode/utf8"
)

// Truncate shortens s to at most limit runes, appending "..." when it was cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

// Preview returns the first limit characters of s on a single line, for trace output.
func Preview(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	return Truncate(s, limit)
}
