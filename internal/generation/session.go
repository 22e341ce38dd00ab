package generation

import (
	"strings"

	"edgellm/internal/catalog"
)

// Session is the per-call state of one streaming generation.
type Session struct {
	perspective catalog.Perspective
	th          Thresholds

	raw    strings.Builder
	tokens int
	done   bool
	reason StopReason
}

// NewSession starts an empty session for perspective p.
func NewSession(p catalog.Perspective, th Thresholds) *Session {
	return &Session{perspective: p, th: th.WithDefaults()}
}

// Feed appends one fragment and reports whether generation should stop. The
// full predicate only runs when the fragment may have closed a sentence or on
// every GateEvery-th fragment. Feeding a finished session is a no-op.
func (s *Session) Feed(fragment string) bool {
	if s.done {
		return true
	}
	s.raw.WriteString(fragment)
	s.tokens++
	if !isBoundaryFragment(fragment) && s.tokens%s.th.GateEvery != 0 {
		return false
	}
	if r := ShouldStop(s.raw.String(), s.perspective, s.th); r != StopNone {
		s.done, s.reason = true, r
	}
	return s.done
}

// Finish marks the session terminal after the stream ran out.
func (s *Session) Finish() {
	if !s.done {
		s.done, s.reason = true, StopExhausted
	}
}

// Raw is the accumulated text so far.
func (s *Session) Raw() string { return s.raw.String() }

// TokenCount is the number of fragments consumed.
func (s *Session) TokenCount() int { return s.tokens }

// Done reports whether the session reached a terminal state.
func (s *Session) Done() bool { return s.done }

// Reason is why the session stopped, if it has.
func (s *Session) Reason() StopReason { return s.reason }

// Result is the cleaned, perspective-shaped answer for the text so far.
func (s *Session) Result() string { return Finalize(s.raw.String(), s.perspective) }
