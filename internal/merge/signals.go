package merge

import (
	"regexp"
	"strings"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

// Heuristic structural signals for exercise/exam documents. These are
// keyword/regex summaries of the merged items, not evidence-validated
// facts, and are surfaced under a separate field so consumers can ignore
// them.

var pointsRe = regexp.MustCompile(`(?i)\(?\b\d+([.,]\d+)?\s*(punkte?|pkt\.?|points?|p)\b\)?`)

var tableMarkers = []string{"|---", "\\begin{tabular}", "tabelle", "spalte", "zeile", "table"}

// imperativeVerbs are task verbs commonly opening German and English
// exercise statements.
var imperativeVerbs = []string{
	"berechnen", "bestimmen", "zeigen", "beweisen", "erklaeren", "erklären",
	"nennen", "skizzieren", "vergleichen", "begruenden", "begründen",
	"vereinfachen", "konstruieren", "geben",
	"calculate", "determine", "show", "prove", "explain", "compare",
	"simplify", "construct", "derive",
}

// deriveSignals scans merged exercise items for structural markers.
func deriveSignals(p domain.AnalysisPayload) *domain.StructuralSignals {
	sig := &domain.StructuralSignals{}
	verbCounts := map[string]bool{}
	patterns := map[string]bool{}

	scan := func(text string) {
		lower := strings.ToLower(text)
		for _, marker := range tableMarkers {
			if strings.Contains(lower, marker) {
				sig.UsesTables = true
			}
		}
		for _, verb := range imperativeVerbs {
			if strings.Contains(lower, verb) {
				verbCounts[verb] = true
			}
		}
		if m := pointsRe.FindString(text); m != "" {
			patterns[strings.TrimSpace(m)] = true
		}
	}

	for _, ex := range p.Exercises {
		scan(ex.Question)
		if len(ex.Subtasks) > 0 {
			sig.UsesSubtasks = true
			for _, st := range ex.Subtasks {
				scan(st)
			}
		}
		if ex.Points != "" {
			patterns[ex.Points] = true
		}
	}
	for _, w := range p.WorkedExamples {
		scan(w.Problem)
	}

	sig.ImperativeVerbs = sortedKeys(verbCounts)
	sig.PointsPatterns = sortedKeys(patterns)
	return sig
}
