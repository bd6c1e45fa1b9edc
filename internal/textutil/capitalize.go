// Package textutil holds small string helpers shared by the renderers.
package textutil

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Capitalize trims the text and returns it with an upper-case first letter
// and the rest lower-cased. Blank input logs a warning and yields "".
func Capitalize(text string) string {
	pure := strings.TrimSpace(text)
	if pure == "" {
		slog.Warn("no text for capitalization", slog.String("input", text))
		return ""
	}

	first, size := utf8.DecodeRuneInString(pure)

	return string(unicode.ToUpper(first)) + strings.ToLower(pure[size:])
}
