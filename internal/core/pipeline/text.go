package pipeline

import (
	"strings"
	"unicode/utf8"
)

// maxTextLen caps extracted text for every strategy. It matches the
// embeddings table column contract and keeps provider payloads bounded.
const maxTextLen = 8000

// ExtractPlainText reads text-like content permissively: malformed UTF-8
// sequences are dropped rather than failing the extraction, and the result
// is truncated to maxTextLen characters.
func ExtractPlainText(data []byte) string {
	return truncateText(strings.ToValidUTF8(string(data), ""))
}

// truncateText bounds s to maxTextLen characters (not bytes).
func truncateText(s string) string {
	if utf8.RuneCountInString(s) <= maxTextLen {
		return s
	}
	return string([]rune(s)[:maxTextLen])
}
