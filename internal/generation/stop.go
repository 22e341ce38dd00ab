package generation

import (
	"strings"
	"unicode/utf8"

	"edgellm/internal/catalog"
)

// StopReason says why a session finished.
type StopReason string

const (
	StopNone           StopReason = ""
	StopRepeatedSymbol StopReason = "repeated_symbol"
	StopTooLong        StopReason = "too_long"
	StopTooManyTags    StopReason = "too_many_tags"
	StopSelfComplete   StopReason = "self_complete"
	StopSelfTagged     StopReason = "self_tagged"
	StopTargetReached  StopReason = "target_reached"
	StopEndMarker      StopReason = "end_marker"
	StopExhausted      StopReason = "exhausted"
)

// abnormal is the guard against pathological output. It overrides the
// perspective rules.
func abnormal(raw string, th Thresholds) StopReason {
	switch {
	case longestSymbolRun(raw) >= th.MaxSymbolRun:
		return StopRepeatedSymbol
	case utf8.RuneCountInString(raw) > th.MaxRawChars:
		return StopTooLong
	case strings.Count(raw, DelimiterTag) > th.MaxDelimiterTags:
		return StopTooManyTags
	}
	return StopNone
}

// ShouldStop evaluates the full stop predicate against accumulated raw text.
func ShouldStop(raw string, p catalog.Perspective, th Thresholds) StopReason {
	th = th.WithDefaults()
	if r := abnormal(raw, th); r != StopNone {
		return r
	}
	body := raw
	if i := strings.Index(body, EndOfStream); i >= 0 {
		body = body[:i]
	}
	sentences := ExtractSentences(raw)
	target := p.TargetSentences()

	switch p {
	case catalog.PerspectiveSelf:
		if len(sentences) > 0 {
			first := sentences[0]
			vis := visibleText(first)
			if !hasDigit(vis) && hasTerminalMarker(first) && graphemeLen(vis) >= th.MinSafeSentenceChars {
				return StopSelfComplete
			}
		}
		if strings.Contains(body, SingleSentenceTag) && hasTerminalMarker(body) && len(sentences) >= 1 {
			return StopSelfTagged
		}
	case catalog.PerspectiveOther, catalog.PerspectiveOtherShort:
		if strings.Count(body, DelimiterTag) >= target && hasTerminalMarker(body) {
			return StopTargetReached
		}
	}

	if strings.Contains(raw, EndOfStream) && len(sentences) >= target {
		return StopEndMarker
	}
	return StopNone
}
