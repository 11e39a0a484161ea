// Package strutil contains string utilities.
package strutil

import (
	"strings"
	"unicode/utf8"
)

// Title returns the string with the first codepoint changed to upper case.
func Title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[0:1]) + s[1:]
}

// ChopLineEnding removes a line ending ("\r\n" or "\n") from the end of s.
// It returns s itself if it doesn't end with a line ending.
func ChopLineEnding(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	} else if strings.HasSuffix(s, "\n") {
		return s[:len(s)-1]
	}
	return s
}

// Ellipsize truncates s to at most max bytes, appending "..." if anything was
// cut off. The cut backs up to a rune boundary so the result stays valid
// UTF-8; max must be at least 3.
func Ellipsize(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
