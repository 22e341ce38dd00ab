package generation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Markers the catalog models are prompted to emit.
const (
	// DelimiterTag closes one sentence in multi-sentence answers.
	DelimiterTag = "</sentence>"
	// SingleSentenceTag closes a one-sentence answer.
	SingleSentenceTag = "</answer>"
	// EndOfStream is the model's end-of-turn marker.
	EndOfStream = "<end_of_turn>"
	// NoOutput replaces an answer with no usable sentences.
	NoOutput = "(생성된 문장이 없습니다)"
)

var (
	// numberedTagRe matches <s1>, </s1>, <s12> ...
	numberedTagRe = regexp.MustCompile(`</?s\d+>`)
	// closingTagRe matches a closing markup tag at the end of s.
	closingTagRe = regexp.MustCompile(`</[A-Za-z][A-Za-z0-9_]*>$`)
	anyTagRe     = regexp.MustCompile(`<[^<>]*>`)
)

// isEmoji reports whether r starts a pictographic or enclosed symbol models
// use for tone.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // mahjong .. enclosed supplements, pictographs
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2300 && r <= 0x23FF, r >= 0x2B05 && r <= 0x2B55:
		return true
	case r == 0x3030 || r == 0x303D || r == 0x3297 || r == 0x3299:
		return true
	}
	return false
}

// isJoiner reports runes that glue emoji sequences together without being visible.
func isJoiner(r rune) bool {
	return r == 0xFE0F || r == 0xFE0E || r == 0x200D
}

// isVisibleSymbol is anything printable that is not a letter, digit or space.
func isVisibleSymbol(r rune) bool {
	if isJoiner(r) || unicode.IsSpace(r) || unicode.IsControl(r) {
		return false
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
}

// trimTail strips trailing whitespace and emoji joiners.
func trimTail(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool { return unicode.IsSpace(r) || isJoiner(r) })
}

// closers may follow a sentence ending: `좋아요!")` still ends with '!'.
const closers = "\"'”’)]」』"

// trimClosers strips trailing quotes and closing brackets, then whitespace.
func trimClosers(s string) string {
	return trimTail(strings.TrimRight(trimTail(s), closers))
}

// lastGrapheme returns the final user-perceived character of s.
func lastGrapheme(s string) string {
	var last string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		last = g.Str()
	}
	return last
}

// graphemeLen is the length of s in user-perceived characters.
func graphemeLen(s string) int { return uniseg.GraphemeClusterCount(s) }

// hasTerminalMarker reports whether s ends with '.', '!', '?', a closing
// markup tag or an emoji, looking through trailing quotes and brackets.
func hasTerminalMarker(s string) bool {
	s = trimTail(s)
	if s == "" {
		return false
	}
	if closingTagRe.MatchString(s) {
		return true
	}
	s = trimClosers(s)
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(lastGrapheme(s))
	switch r {
	case '.', '!', '?', '…', '。':
		return true
	}
	return isEmoji(r)
}

// sentenceFinals are Korean endings that close a sentence without punctuation.
var sentenceFinals = []string{"요", "다", "죠", "까", "네", "~"}

// endsSentence is hasTerminalMarker plus language-specific sentence finals.
func endsSentence(s string) bool {
	if hasTerminalMarker(s) {
		return true
	}
	s = trimClosers(s)
	for _, f := range sentenceFinals {
		if strings.HasSuffix(s, f) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// isBoundaryFragment reports whether a fragment may have closed a sentence.
func isBoundaryFragment(frag string) bool {
	return strings.IndexFunc(frag, func(r rune) bool {
		return r == '\n' || isVisibleSymbol(r)
	}) >= 0
}

// longestSymbolRun returns the longest run of one repeated visible symbol.
// Symbols are grapheme clusters, so a skin-tone, flag or ZWJ emoji counts as
// one symbol.
func longestSymbolRun(s string) int {
	best, run := 0, 0
	prev := ""
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		c := g.Str()
		r, _ := utf8.DecodeRuneInString(c)
		if !isVisibleSymbol(r) {
			if !isJoiner(r) {
				prev, run = "", 0
			}
			continue
		}
		if c == prev {
			run++
		} else {
			prev, run = c, 1
		}
		if run > best {
			best = run
		}
	}
	return best
}
