package extract

import (
	"unicode/utf8"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/normalize"
)

// DefaultEvidenceThreshold is the fraction of snippet tokens that must
// occur in the source text for a snippet to count as supporting evidence.
const DefaultEvidenceThreshold = 0.70

// maxEvidenceLen caps stored snippet length; the prompt asks for <=200
// chars but model output is not trusted.
const maxEvidenceLen = 200

// EvidenceValidator checks extracted snippets against the chunk they claim
// to quote. Items whose snippets all fail are hallucination candidates and
// get dropped.
type EvidenceValidator struct {
	threshold    float64
	sourceTokens map[string]struct{}
}

// NewEvidenceValidator tokenizes the source text once for repeated snippet
// checks. threshold <= 0 selects the default.
func NewEvidenceValidator(sourceText string, threshold float64) *EvidenceValidator {
	if threshold <= 0 {
		threshold = DefaultEvidenceThreshold
	}
	return &EvidenceValidator{
		threshold:    threshold,
		sourceTokens: normalize.TokenSet(normalize.EvidenceTokens(sourceText)),
	}
}

// Supported reports whether enough of the snippet's tokens occur in the
// source text. Empty or token-free snippets are never supported.
func (v *EvidenceValidator) Supported(snippet string) bool {
	tokens := normalize.EvidenceTokens(snippet)
	if len(tokens) == 0 {
		return false
	}
	hits := 0
	for _, t := range tokens {
		if _, ok := v.sourceTokens[t]; ok {
			hits++
		}
	}
	return float64(hits)/float64(len(tokens)) >= v.threshold
}

// FilterSupported returns the snippets that pass validation, truncated to
// the storage cap. An empty result means the owning item must be dropped.
func (v *EvidenceValidator) FilterSupported(snippets []string) []string {
	var kept []string
	for _, s := range snippets {
		if !v.Supported(s) {
			continue
		}
		if len(s) > maxEvidenceLen {
			cut := maxEvidenceLen
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
			s = s[:cut]
		}
		kept = append(kept, s)
	}
	return kept
}
