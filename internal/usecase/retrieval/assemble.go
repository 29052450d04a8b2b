package retrieval

import (
	"strings"
	"unicode/utf8"
)

// assemble joins parts with delimiter, checking the rune budget before each append.
// The first non-empty part is always taken, so the result exceeds maxChars by at most that part.
func assemble(parts []string, delimiter string, maxChars int) string {
	var b strings.Builder
	length := 0
	delimiterLength := utf8.RuneCountInString(delimiter)

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		partLength := utf8.RuneCountInString(part)
		if length > 0 {
			if length+delimiterLength+partLength > maxChars {
				break
			}
			b.WriteString(delimiter)
			length += delimiterLength
		}

		b.WriteString(part)
		length += partLength

		if length >= maxChars {
			break
		}
	}

	return strings.TrimSpace(b.String())
}
