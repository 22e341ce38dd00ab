package generation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// transform is one step of the cleanup pipeline.
type transform struct {
	name string
	fn   func(string) string
}

var (
	arrowRe        = regexp.MustCompile(`[←↑→↓↔↕⇐⇑⇒⇓⇔➔➜➝➞➡⬅⬆⬇]`)
	repeatedBangRe = regexp.MustCompile(`!{2,}`)
	repeatedQRe    = regexp.MustCompile(`\?{2,}`)
	shortBracketRe = regexp.MustCompile(`\[[^\[\]]{3,20}\]`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// emphasisSymbols collapse to a single occurrence when repeated 3+ times.
const emphasisSymbols = "*~_-=#^+♥♡★☆♪·"

// cleanSteps run in order. Each is a pure string -> string function.
var cleanSteps = []transform{
	{"strip_tags", stripTags},
	{"strip_arrows", func(s string) string { return arrowRe.ReplaceAllString(s, "") }},
	{"collapse_emphasis", collapseEmphasis},
	{"collapse_emoji", collapseEmoji},
	{"collapse_marks", collapseMarks},
	{"strip_short_brackets", stripShortBrackets},
	{"collapse_space", func(s string) string { return spaceRe.ReplaceAllString(s, " ") }},
	{"trim", strings.TrimSpace},
	{"terminate", terminate},
}

// maxCleanPasses bounds the fixpoint loop in CleanSentence.
const maxCleanPasses = 8

// CleanSentence normalizes one extracted sentence for display. It runs the
// cleanup steps until the output stops changing, so it is idempotent.
func CleanSentence(s string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := s
		for _, st := range cleanSteps {
			next = st.fn(next)
		}
		if next == s {
			return next
		}
		s = next
	}
	return s
}

func stripTags(s string) string {
	for {
		next := anyTagRe.ReplaceAllString(s, "")
		if next == s {
			return next
		}
		s = next
	}
}

// collapseEmphasis turns runs of 3+ identical emphasis symbols into one.
func collapseEmphasis(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		j := i + 1
		for j < len(runes) && runes[j] == r {
			j++
		}
		n := j - i
		if n >= 3 && strings.ContainsRune(emphasisSymbols, r) {
			b.WriteRune(r)
		} else {
			for k := i; k < j; k++ {
				b.WriteRune(r)
			}
		}
		i = j
	}
	return b.String()
}

// collapseEmoji turns runs of 3+ identical emoji into one. Emoji are compared
// as whole grapheme clusters.
func collapseEmoji(s string) string {
	var clusters []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(clusters); {
		c := clusters[i]
		j := i + 1
		for j < len(clusters) && clusters[j] == c {
			j++
		}
		r, _ := utf8.DecodeRuneInString(c)
		if j-i >= 3 && isEmoji(r) {
			b.WriteString(c)
		} else {
			for k := i; k < j; k++ {
				b.WriteString(c)
			}
		}
		i = j
	}
	return b.String()
}

func collapseMarks(s string) string {
	s = repeatedBangRe.ReplaceAllString(s, "!")
	return repeatedQRe.ReplaceAllString(s, "?")
}

func stripShortBrackets(s string) string {
	for {
		next := shortBracketRe.ReplaceAllString(s, "")
		if next == s {
			return next
		}
		s = next
	}
}

// terminate appends '.' to a non-empty sentence without a sentence ending.
func terminate(s string) string {
	if s == "" || endsSentence(s) {
		return s
	}
	return s + "."
}
