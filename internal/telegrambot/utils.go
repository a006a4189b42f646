package telegrambot

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// utf16Len returns the number of UTF-16 code units needed to encode s.
// Telegram measures message length in UTF-16 code units.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// utf16Prefix returns the longest prefix of s that fits in maxUnits UTF-16
// code units without splitting a surrogate pair.
func utf16Prefix(s string, maxUnits int) string {
	units := 0

	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}

		if units+n > maxUnits {
			return s[:i]
		}

		units += n
	}

	return s
}

// SplitText splits text into parts of at most limit UTF-16 code units,
// preferring to break at line breaks.
func SplitText(text string, limit int) []string {
	if limit <= 0 || utf16Len(text) <= limit {
		return []string{text}
	}

	var parts []string

	for utf16Len(text) > limit {
		head := utf16Prefix(text, limit)
		if head == "" {
			// a single astral rune wider than the limit
			_, size := utf8.DecodeRuneInString(text)
			head = text[:size]
		}

		if cut := strings.LastIndex(head, "\n"); cut > 0 {
			head = head[:cut]
		}

		parts = append(parts, head)
		text = strings.TrimPrefix(text[len(head):], "\n")
	}

	if text != "" {
		parts = append(parts, text)
	}

	return parts
}
