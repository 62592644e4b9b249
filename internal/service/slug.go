package service

import (
	"strings"
	"unicode"
)

// NormalizeSlug turns a title or user-supplied slug into a URL path segment.
// Whitespace runs become a single hyphen and anything outside [a-z0-9_-] is
// dropped, so the result is stable when normalized again.
func NormalizeSlug(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))

	var b strings.Builder
	b.Grow(len(trimmed))

	inSpace := false
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		inSpace = false

		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	return b.String()
}
