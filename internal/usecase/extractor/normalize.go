package extractor

import "strings"

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\x00", "")

// Normalize unifies line endings, replaces invalid UTF-8 and trims surrounding whitespace
func Normalize(text string) string {
	text = strings.ToValidUTF8(text, "\uFFFD")
	return strings.TrimSpace(newlineReplacer.Replace(text))
}
