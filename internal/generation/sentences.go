package generation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractSentences splits raw model output into trimmed, non-empty sentences.
// Numbered tags are removed and everything after EndOfStream is dropped. When
// DelimiterTag is present the text is split on it; otherwise it is split
// after '.', '!' or '?' followed by whitespace.
func ExtractSentences(raw string) []string {
	s := numberedTagRe.ReplaceAllString(raw, "")
	if i := strings.Index(s, EndOfStream); i >= 0 {
		s = s[:i]
	}
	var parts []string
	if strings.Contains(s, DelimiterTag) {
		parts = strings.Split(s, DelimiterTag)
	} else {
		parts = splitOnPunctuation(s)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || strings.TrimSpace(anyTagRe.ReplaceAllString(p, "")) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// splitOnPunctuation cuts s after every '.', '!' or '?' that is followed by
// whitespace. The punctuation stays with its sentence.
func splitOnPunctuation(s string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next >= len(s) {
			break
		}
		nr, _ := utf8.DecodeRuneInString(s[next:])
		if unicode.IsSpace(nr) {
			parts = append(parts, s[start:next])
			start = next
		}
	}
	return append(parts, s[start:])
}

// visibleText is s without markup tags, trimmed.
func visibleText(s string) string {
	return strings.TrimSpace(anyTagRe.ReplaceAllString(s, ""))
}
