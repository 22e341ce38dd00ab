package generation

import (
	"strings"

	"edgellm/internal/catalog"
)

// PostprocessByPerspective cleans sentences and assembles the final answer:
// SELF keeps the first sentence, OTHER joins the first 3 with a space and
// OTHER_SHORT joins the first 10 with newlines. Sentences that clean to
// nothing are dropped; when none remain the result is NoOutput.
func PostprocessByPerspective(sentences []string, p catalog.Perspective) string {
	cleaned := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if c := CleanSentence(s); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return NoOutput
	}
	n := p.TargetSentences()
	if len(cleaned) > n {
		cleaned = cleaned[:n]
	}
	switch p {
	case catalog.PerspectiveOtherShort:
		return strings.Join(cleaned, "\n")
	case catalog.PerspectiveOther:
		return strings.Join(cleaned, " ")
	}
	return cleaned[0]
}

// Finalize extracts and assembles the answer for raw model output.
func Finalize(raw string, p catalog.Perspective) string {
	return PostprocessByPerspective(ExtractSentences(raw), p)
}
