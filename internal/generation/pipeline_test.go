package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgellm/internal/catalog"
	"edgellm/internal/engine"
)

type fakeResident struct {
	d     catalog.Descriptor
	ok    bool
	users int
}

func (f *fakeResident) Current() (catalog.Descriptor, bool) { return f.d, f.ok }

func (f *fakeResident) BeginUse() func() {
	f.users++
	return func() { f.users-- }
}

func newTestPipeline(t *testing.T, p catalog.Perspective, frags ...string) (*Pipeline, *engine.Scripted, *fakeResident) {
	t.Helper()
	eng := engine.NewScripted(frags...)
	require.NoError(t, eng.Load("m.gguf"))
	res := &fakeResident{d: catalog.NewDescriptor("m.gguf", "m", catalog.CategoryHealth, p), ok: true}
	return New(Config{Engine: eng, Residency: res, Logger: zerolog.Nop()}), eng, res
}

// feedUntilStop returns the index of the fragment that stopped the session, or -1.
func feedUntilStop(s *Session, frags []string) int {
	for i, f := range frags {
		if s.Feed(f) {
			return i
		}
	}
	return -1
}

func TestRepeatedEmojiStopsEveryPerspective(t *testing.T) {
	frags := []string{"😊", "😊", "😊", "😊", "😊", "😊"}
	for _, p := range []catalog.Perspective{catalog.PerspectiveSelf, catalog.PerspectiveOther, catalog.PerspectiveOtherShort} {
		s := NewSession(p, DefaultThresholds())
		idx := feedUntilStop(s, frags)
		assert.GreaterOrEqual(t, idx, 0, string(p))
		assert.Equal(t, StopRepeatedSymbol, s.Reason(), string(p))
	}
}

func TestCompoundEmojiStopsEveryPerspective(t *testing.T) {
	for _, emoji := range []string{"👍🏻", "🇰🇷", "👨\u200d👩\u200d👧"} {
		frags := make([]string, 6)
		for i := range frags {
			frags[i] = emoji
		}
		for _, p := range []catalog.Perspective{catalog.PerspectiveSelf, catalog.PerspectiveOther, catalog.PerspectiveOtherShort} {
			pl, eng, _ := newTestPipeline(t, p, frags...)
			final := Collect(pl.Generate(context.Background(), "prompt", p))
			require.Equal(t, KindSuccess, final.Kind, final.Message)
			assert.Equal(t, StopRepeatedSymbol, final.StopReason, "%s %q", p, emoji)
			assert.Equal(t, DefaultMaxSymbolRun, eng.Consumed(), "%s %q", p, emoji)
			assert.Equal(t, emoji, final.Text, "%s %q", p, emoji)
		}
	}
}

func TestSelfFastPathStopsOnCompleteSentence(t *testing.T) {
	frags := []string{"오늘도", " 힘차게", " 걸었어요", ".", " 내일은", " 8000보", " 걸어요."}
	p, eng, res := newTestPipeline(t, catalog.PerspectiveSelf, frags...)
	final := Collect(p.Generate(context.Background(), "prompt", catalog.PerspectiveSelf))
	require.Equal(t, KindSuccess, final.Kind, final.Message)
	assert.Equal(t, "오늘도 힘차게 걸었어요.", final.Text)
	assert.Equal(t, 4, final.TokenCount)
	assert.Equal(t, StopSelfComplete, final.StopReason)
	assert.Equal(t, 4, eng.Consumed())
	assert.Equal(t, 0, res.users)
}

func TestSelfWithDigitsWaitsForTag(t *testing.T) {
	s := NewSession(catalog.PerspectiveSelf, DefaultThresholds())
	idx := feedUntilStop(s, []string{"<answer>오늘 7000보", " 걸었어요.", "</answer>", " 추가 문장."})
	assert.Equal(t, 2, idx)
	assert.Equal(t, StopSelfTagged, s.Reason())
	assert.Equal(t, "오늘 7000보 걸었어요.", s.Result())
}

func TestSelfWithDigitsAndNoTagRunsToExhaustion(t *testing.T) {
	s := NewSession(catalog.PerspectiveSelf, DefaultThresholds())
	assert.Equal(t, -1, feedUntilStop(s, []string{"오늘 7000보를", " 걸었어요."}))
	s.Finish()
	assert.Equal(t, StopExhausted, s.Reason())
	assert.Equal(t, "오늘 7000보를 걸었어요.", s.Result())
}

func TestOtherStopsAtThirdTag(t *testing.T) {
	frags := []string{
		"<sentence>오늘 많이 걸으셨네요.", "</sentence>",
		"<sentence>꾸준함이 멋져요!", "</sentence>",
		"<sentence>내일도 화이팅", "이에요.", "</sen", "tence>",
		"<sentence>네 번째 문장", "</sentence>",
	}
	p, eng, _ := newTestPipeline(t, catalog.PerspectiveOther, frags...)
	final := Collect(p.Generate(context.Background(), "prompt", catalog.PerspectiveOther))
	require.Equal(t, KindSuccess, final.Kind, final.Message)
	assert.Equal(t, StopTargetReached, final.StopReason)
	assert.Equal(t, 8, final.TokenCount)
	assert.Equal(t, 8, eng.Consumed())
	assert.Equal(t, "오늘 많이 걸으셨네요. 꾸준함이 멋져요! 내일도 화이팅이에요.", final.Text)
	assert.Equal(t, "오늘 많이 걸으셨네요. 꾸준함이 멋져요! 내일도 화이팅이에요.",
		PostprocessByPerspective(ExtractSentences(final.Raw), catalog.PerspectiveOther))
}

func TestEndMarkerFallback(t *testing.T) {
	s := NewSession(catalog.PerspectiveOther, DefaultThresholds())
	idx := feedUntilStop(s, []string{"첫째예요. ", "둘째예요. ", "셋째예요.", "<end_of_turn>", "더 있음"})
	assert.Equal(t, 3, idx)
	assert.Equal(t, StopEndMarker, s.Reason())
}

func TestGateDefersCheckUntilNthFragment(t *testing.T) {
	th := DefaultThresholds()
	th.MaxRawChars = 5
	s := NewSession(catalog.PerspectiveSelf, th)
	frags := make([]string, 20)
	for i := range frags {
		frags[i] = "가"
	}
	assert.Equal(t, 9, feedUntilStop(s, frags))
	assert.Equal(t, StopTooLong, s.Reason())
}

func TestTooManyDelimiterTags(t *testing.T) {
	th := DefaultThresholds()
	th.MaxDelimiterTags = 2
	assert.Equal(t, StopTooManyTags, ShouldStop("a</sentence>b</sentence>c</sentence>", catalog.PerspectiveOtherShort, th))
}

func TestShouldStopDefaultsUnsetThresholds(t *testing.T) {
	assert.Equal(t, StopNone, ShouldStop("짧은 글", catalog.PerspectiveOther, Thresholds{}))
}

func TestGenerateEventOrder(t *testing.T) {
	p, _, _ := newTestPipeline(t, catalog.PerspectiveOther, "하나예요. ", "둘이에요.")
	var kinds []Kind
	var texts []string
	for e := range p.Generate(context.Background(), "prompt", catalog.PerspectiveOther) {
		kinds = append(kinds, e.Kind)
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []Kind{KindLoading, KindStreaming, KindStreaming, KindSuccess}, kinds)
	assert.Equal(t, "하나예요. ", texts[1])
	assert.Equal(t, "하나예요. 둘이에요.", texts[2], "streaming text is cumulative")
	assert.Equal(t, "하나예요. 둘이에요.", texts[3])
}

func TestGenerateNoModelResident(t *testing.T) {
	eng := engine.NewScripted("x")
	p := New(Config{Engine: eng, Residency: &fakeResident{}, Logger: zerolog.Nop()})
	var got []Event
	for e := range p.Generate(context.Background(), "prompt", catalog.PerspectiveSelf) {
		got = append(got, e)
	}
	require.Len(t, got, 2)
	assert.Equal(t, KindLoading, got[0].Kind)
	assert.Equal(t, KindError, got[1].Kind)
	assert.True(t, errors.Is(got[1].Err, ErrNoModelResident))
	assert.Zero(t, eng.Consumed())
}

func TestGenerateStreamFailure(t *testing.T) {
	p, eng, res := newTestPipeline(t, catalog.PerspectiveSelf, "a", "b", "c")
	eng.FailAt, eng.GenErr = 1, errors.New("decode failed")
	final := Collect(p.Generate(context.Background(), "prompt", catalog.PerspectiveSelf))
	assert.Equal(t, KindError, final.Kind)
	assert.Equal(t, "decode failed", final.Message)
	assert.Equal(t, 0, res.users)
}

func TestGenerateExhaustedStreamStillSucceeds(t *testing.T) {
	p, _, _ := newTestPipeline(t, catalog.PerspectiveOtherShort)
	final := Collect(p.Generate(context.Background(), "prompt", catalog.PerspectiveOtherShort))
	require.Equal(t, KindSuccess, final.Kind)
	assert.Equal(t, NoOutput, final.Text)
	assert.Equal(t, StopExhausted, final.StopReason)
}

func TestConsumerBreakStopsEngine(t *testing.T) {
	p, eng, res := newTestPipeline(t, catalog.PerspectiveOtherShort, "a", "b", "c", "d", "e")
	n := 0
	for e := range p.Generate(context.Background(), "prompt", catalog.PerspectiveOtherShort) {
		if e.Kind == KindStreaming {
			n++
			if n == 2 {
				break
			}
		}
	}
	assert.Equal(t, 2, eng.Consumed())
	assert.Equal(t, 0, res.users)
}
