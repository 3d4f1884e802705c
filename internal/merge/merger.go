// Package merge deduplicates per-chunk extraction results into one
// document-level analysis and aggregates document analyses into the
// module-level knowledge index.
package merge

import (
	"sort"
	"strings"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/extract"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/normalize"
)

// maxEvidencePerItem caps the evidence union kept on a merged item.
const maxEvidencePerItem = 5

// Merger merges and deduplicates extraction output. Topic strings are
// canonicalized before deduplication so near-duplicate spellings collapse.
type Merger struct {
	topics *normalize.TopicCanonicalizer
}

func New(topics *normalize.TopicCanonicalizer) *Merger {
	if topics == nil {
		topics = normalize.NewTopicCanonicalizer(normalize.DefaultAliases())
	}
	return &Merger{topics: topics}
}

// MergeChunks concatenates accepted items across chunk results and
// deduplicates them by normalized key. Failed chunks contribute nothing.
// For exercise and exam documents, heuristic structural signals are derived
// from the merged items.
func (m *Merger) MergeChunks(results []extract.ChunkResult, docType domain.DocumentType) domain.AnalysisPayload {
	out := domain.AnalysisPayload{SchemaVersion: domain.AnalysisSchemaVersion}

	concepts := map[string]*domain.Concept{}
	formulas := map[string]*domain.Formula{}
	procedures := map[string]*domain.Procedure{}
	examples := map[string]*domain.WorkedExample{}
	exercises := map[string]*domain.ExerciseItem{}
	topics := map[string]*domain.TopicMention{}
	notes := map[string]bool{}

	var conceptOrder, formulaOrder, procedureOrder, exampleOrder, exerciseOrder, topicOrder []string

	for _, res := range results {
		if !res.Success {
			continue
		}
		p := res.Payload

		for _, c := range p.Concepts {
			key := conceptKey(c.Term)
			if key == "" {
				continue
			}
			if existing, ok := concepts[key]; ok {
				mergeConcept(existing, c)
			} else {
				cc := c
				concepts[key] = &cc
				conceptOrder = append(conceptOrder, key)
			}
		}
		for _, f := range p.Formulas {
			key := formulaKey(f.Latex)
			if key == "" {
				continue
			}
			if existing, ok := formulas[key]; ok {
				mergeFormula(existing, f)
			} else {
				ff := f
				formulas[key] = &ff
				formulaOrder = append(formulaOrder, key)
			}
		}
		for _, pr := range p.Procedures {
			key := procedureKey(pr.Name)
			if key == "" {
				continue
			}
			if existing, ok := procedures[key]; ok {
				mergeProcedure(existing, pr)
			} else {
				pp := pr
				procedures[key] = &pp
				procedureOrder = append(procedureOrder, key)
			}
		}
		for _, w := range p.WorkedExamples {
			key := normalize.Text(w.Problem)
			if key == "" {
				continue
			}
			if existing, ok := examples[key]; ok {
				mergeExample(existing, w)
			} else {
				ww := w
				examples[key] = &ww
				exampleOrder = append(exampleOrder, key)
			}
		}
		for _, ex := range p.Exercises {
			key := normalize.Text(ex.Question)
			if key == "" {
				continue
			}
			if existing, ok := exercises[key]; ok {
				mergeExercise(existing, ex)
			} else {
				ee := ex
				exercises[key] = &ee
				exerciseOrder = append(exerciseOrder, key)
			}
		}
		for _, t := range p.Topics {
			key, display, ok := m.topics.Canonicalize(t.Name)
			if !ok {
				continue
			}
			if existing, ok := topics[key]; ok {
				existing.EvidenceSnippets = unionEvidence(existing.EvidenceSnippets, t.EvidenceSnippets)
			} else {
				topics[key] = &domain.TopicMention{
					Name:             display,
					EvidenceSnippets: capEvidence(t.EvidenceSnippets),
				}
				topicOrder = append(topicOrder, key)
			}
		}
		for _, n := range p.CoverageNotes {
			trimmed := strings.TrimSpace(n.Note)
			if trimmed == "" || notes[trimmed] {
				continue
			}
			notes[trimmed] = true
			out.CoverageNotes = append(out.CoverageNotes, domain.CoverageNote{Note: trimmed})
		}
	}

	for _, k := range conceptOrder {
		out.Concepts = append(out.Concepts, *concepts[k])
	}
	for _, k := range formulaOrder {
		out.Formulas = append(out.Formulas, *formulas[k])
	}
	for _, k := range procedureOrder {
		out.Procedures = append(out.Procedures, *procedures[k])
	}
	for _, k := range exampleOrder {
		out.WorkedExamples = append(out.WorkedExamples, *examples[k])
	}
	for _, k := range exerciseOrder {
		out.Exercises = append(out.Exercises, *exercises[k])
	}
	for _, k := range topicOrder {
		out.Topics = append(out.Topics, *topics[k])
	}

	if docType == domain.DocExercise || docType == domain.DocExam {
		out.Signals = deriveSignals(out)
	}
	return out
}

// CanonicalTopicKey exposes the merger's topic canonicalization for
// consumers that need the same key derivation.
func (m *Merger) CanonicalTopicKey(raw string) (key string, display string, ok bool) {
	return m.topics.Canonicalize(raw)
}

func conceptKey(term string) string {
	return "concept|" + strings.ToLower(strings.TrimSpace(term))
}

func formulaKey(latex string) string {
	return strings.Join(strings.Fields(latex), "")
}

func procedureKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// mergeConcept keeps the more informative definition and unions evidence.
func mergeConcept(dst *domain.Concept, src domain.Concept) {
	if len(src.Definition) > len(dst.Definition) {
		dst.Definition = src.Definition
	}
	dst.EvidenceSnippets = unionEvidence(dst.EvidenceSnippets, src.EvidenceSnippets)
}

func mergeFormula(dst *domain.Formula, src domain.Formula) {
	if len(src.Meaning) > len(dst.Meaning) {
		dst.Meaning = src.Meaning
	}
	if dst.Name == "" {
		dst.Name = src.Name
	}
	dst.EvidenceSnippets = unionEvidence(dst.EvidenceSnippets, src.EvidenceSnippets)
}

func mergeProcedure(dst *domain.Procedure, src domain.Procedure) {
	if len(src.Steps) > len(dst.Steps) {
		dst.Steps = src.Steps
	}
	dst.EvidenceSnippets = unionEvidence(dst.EvidenceSnippets, src.EvidenceSnippets)
}

func mergeExample(dst *domain.WorkedExample, src domain.WorkedExample) {
	if len(src.Approach) > len(dst.Approach) {
		dst.Approach = src.Approach
	}
	dst.EvidenceSnippets = unionEvidence(dst.EvidenceSnippets, src.EvidenceSnippets)
}

func mergeExercise(dst *domain.ExerciseItem, src domain.ExerciseItem) {
	if len(src.Subtasks) > len(dst.Subtasks) {
		dst.Subtasks = src.Subtasks
	}
	if dst.Points == "" {
		dst.Points = src.Points
	}
	dst.EvidenceSnippets = unionEvidence(dst.EvidenceSnippets, src.EvidenceSnippets)
}

// unionEvidence merges evidence snippets, deduplicated, capped at
// maxEvidencePerItem, preserving first-seen order.
func unionEvidence(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == maxEvidencePerItem {
			break
		}
	}
	return out
}

func capEvidence(s []string) []string {
	return unionEvidence(s, nil)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
