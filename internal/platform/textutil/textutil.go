package textutil

import (
	"strings"
	"unicode/utf8"
)

// DigitsOnly drops every rune that is not an ASCII digit.
func DigitsOnly(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Truncate shortens value to at most limit runes, replacing the tail with marker when it had to cut.
func Truncate(value string, limit int, marker string) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	keep := limit - utf8.RuneCountInString(marker)
	if keep <= 0 {
		return string([]rune(marker)[:limit])
	}
	return string([]rune(value)[:keep]) + marker
}

// TrimFields trims surrounding whitespace from every pointed-to string.
func TrimFields(fields ...*string) {
	for _, field := range fields {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}
