package merge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/extract"
)

func okChunk(index int, p domain.AnalysisPayload) extract.ChunkResult {
	return extract.ChunkResult{ChunkIndex: index, Success: true, Payload: p}
}

func TestMergeChunks_DeduplicatesConceptsAcrossChunks(t *testing.T) {
	m := New(nil)

	results := []extract.ChunkResult{
		okChunk(0, domain.AnalysisPayload{Concepts: []domain.Concept{
			{Term: "Automat", Definition: "kurz", EvidenceSnippets: []string{"a"}},
		}}),
		okChunk(1, domain.AnalysisPayload{Concepts: []domain.Concept{
			{Term: "  automat ", Definition: "eine deutlich laengere Definition", EvidenceSnippets: []string{"b"}},
		}}),
	}

	out := m.MergeChunks(results, domain.DocScript)
	require.Len(t, out.Concepts, 1)
	assert.Equal(t, "Automat", out.Concepts[0].Term, "first spelling wins the display form")
	assert.Equal(t, "eine deutlich laengere Definition", out.Concepts[0].Definition, "longer definition wins")
	assert.Equal(t, []string{"a", "b"}, out.Concepts[0].EvidenceSnippets)
}

func TestMergeChunks_FormulaKeyIgnoresWhitespace(t *testing.T) {
	m := New(nil)

	results := []extract.ChunkResult{
		okChunk(0, domain.AnalysisPayload{Formulas: []domain.Formula{
			{Latex: `a \land b`, EvidenceSnippets: []string{"x"}},
			{Latex: `a\land b`, Name: "Konjunktion", EvidenceSnippets: []string{"y"}},
		}}),
	}

	out := m.MergeChunks(results, domain.DocScript)
	require.Len(t, out.Formulas, 1)
	assert.Equal(t, "Konjunktion", out.Formulas[0].Name, "name fills in from the later duplicate")
}

func TestMergeChunks_FailedChunksContributeNothing(t *testing.T) {
	m := New(nil)

	results := []extract.ChunkResult{
		{ChunkIndex: 0, Success: false, Error: "timeout", Payload: domain.AnalysisPayload{
			Concepts: []domain.Concept{{Term: "Geist", Definition: "d", EvidenceSnippets: []string{"e"}}},
		}},
		okChunk(1, domain.AnalysisPayload{Concepts: []domain.Concept{
			{Term: "Echt", Definition: "d", EvidenceSnippets: []string{"e"}},
		}}),
	}

	out := m.MergeChunks(results, domain.DocScript)
	require.Len(t, out.Concepts, 1)
	assert.Equal(t, "Echt", out.Concepts[0].Term)
}

func TestMergeChunks_TopicVariantsCollapse(t *testing.T) {
	m := New(nil)

	results := []extract.ChunkResult{
		okChunk(0, domain.AnalysisPayload{Topics: []domain.TopicMention{
			{Name: "KV-Diagramm", EvidenceSnippets: []string{"s1"}},
			{Name: "Einleitung", EvidenceSnippets: []string{"s2"}},
		}}),
		okChunk(1, domain.AnalysisPayload{Topics: []domain.TopicMention{
			{Name: "Karnaugh-Veitch", EvidenceSnippets: []string{"s3"}},
		}}),
	}

	out := m.MergeChunks(results, domain.DocScript)
	require.Len(t, out.Topics, 1, "spelling variants collapse, noise is dropped")
	assert.Equal(t, "KV-Diagramm", out.Topics[0].Name)
	assert.Equal(t, []string{"s1", "s3"}, out.Topics[0].EvidenceSnippets)
}

func TestMergeChunks_EvidenceCapped(t *testing.T) {
	m := New(nil)

	var snippets []string
	for i := 0; i < 10; i++ {
		snippets = append(snippets, fmt.Sprintf("snippet-%d", i))
	}
	results := []extract.ChunkResult{
		okChunk(0, domain.AnalysisPayload{Concepts: []domain.Concept{
			{Term: "X", Definition: "d", EvidenceSnippets: snippets},
		}}),
	}

	out := m.MergeChunks(results, domain.DocScript)
	require.Len(t, out.Concepts, 1)
	assert.Len(t, out.Concepts[0].EvidenceSnippets, maxEvidencePerItem)
}

func TestMergeChunks_CoverageNotesDeduplicated(t *testing.T) {
	m := New(nil)

	results := []extract.ChunkResult{
		okChunk(0, domain.AnalysisPayload{CoverageNotes: []domain.CoverageNote{{Note: "Diagramm übersprungen"}}}),
		okChunk(1, domain.AnalysisPayload{CoverageNotes: []domain.CoverageNote{{Note: " Diagramm übersprungen "}, {Note: ""}}}),
	}

	out := m.MergeChunks(results, domain.DocScript)
	assert.Len(t, out.CoverageNotes, 1)
}

func TestMergeChunks_SignalsOnlyForExerciseAndExam(t *testing.T) {
	m := New(nil)

	payload := domain.AnalysisPayload{Exercises: []domain.ExerciseItem{{
		Question: "Berechnen Sie die Laufzeit (4 Punkte)",
		Subtasks: []string{"a) Bestimmen Sie den Grenzwert"},
	}}}

	script := m.MergeChunks([]extract.ChunkResult{okChunk(0, payload)}, domain.DocScript)
	assert.Nil(t, script.Signals)

	exam := m.MergeChunks([]extract.ChunkResult{okChunk(0, payload)}, domain.DocExam)
	require.NotNil(t, exam.Signals)
	assert.True(t, exam.Signals.UsesSubtasks)
	assert.Contains(t, exam.Signals.ImperativeVerbs, "berechnen")
	assert.Contains(t, exam.Signals.ImperativeVerbs, "bestimmen")
	assert.NotEmpty(t, exam.Signals.PointsPatterns)
}
