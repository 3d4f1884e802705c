package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

func docWith(id string, docType domain.DocumentType, coverage float64, p *domain.AnalysisPayload) DocAnalysis {
	return DocAnalysis{
		DocumentID:      id,
		DocumentType:    docType,
		SourceHash:      "hash-" + id,
		CoveragePercent: coverage,
		Payload:         p,
	}
}

func TestAggregateModule_EmptyModule(t *testing.T) {
	m := New(nil)
	rec := m.AggregateModule("mod-1", nil)
	assert.Equal(t, domain.StatusMissing, rec.Status)
	assert.Empty(t, rec.Knowledge.Topics)
}

func TestAggregateModule_TopicWeightAndInvertedIndex(t *testing.T) {
	m := New(nil)

	docs := []DocAnalysis{
		docWith("doc-a", domain.DocScript, 100, &domain.AnalysisPayload{
			Topics: []domain.TopicMention{{Name: "KV-Diagramm", EvidenceSnippets: []string{"e1", "e2"}}},
		}),
		docWith("doc-b", domain.DocScript, 100, &domain.AnalysisPayload{
			Topics: []domain.TopicMention{{Name: "Karnaugh-Veitch", EvidenceSnippets: []string{"e3"}}},
		}),
	}

	rec := m.AggregateModule("mod-1", docs)
	require.Len(t, rec.Knowledge.Topics, 1)
	topic := rec.Knowledge.Topics[0]

	assert.Equal(t, "KV-Diagramm", topic.Name)
	assert.Equal(t, domain.TopicID("mod-1", "kv-diagramm"), topic.TopicID)
	// 2 mentioning documents plus 0.25 per evidence snippet.
	assert.InDelta(t, 2.0+0.25*3, topic.Weight, 1e-9)
	assert.Equal(t, []string{"doc-a", "doc-b"}, topic.DocIDs)
	assert.Equal(t, []string{"doc-a", "doc-b"}, rec.Knowledge.TopicDocs[topic.TopicID])
}

func TestAggregateModule_CoverageIsMean(t *testing.T) {
	m := New(nil)

	docs := []DocAnalysis{
		docWith("doc-a", domain.DocScript, 100, &domain.AnalysisPayload{}),
		docWith("doc-b", domain.DocScript, 50, &domain.AnalysisPayload{}),
	}
	rec := m.AggregateModule("mod-1", docs)
	assert.InDelta(t, 75.0, rec.CoveragePercent, 1e-9)
	assert.Equal(t, domain.StatusDone, rec.Status)
}

func TestAggregateModule_StyleProfilesSplitByDocType(t *testing.T) {
	m := New(nil)

	docs := []DocAnalysis{
		docWith("exam-1", domain.DocExam, 100, &domain.AnalysisPayload{
			Signals: &domain.StructuralSignals{UsesSubtasks: true, ImperativeVerbs: []string{"berechnen"}},
		}),
		docWith("script-1", domain.DocScript, 100, &domain.AnalysisPayload{}),
	}

	rec := m.AggregateModule("mod-1", docs)
	require.NotNil(t, rec.ExamStyleProfile)
	assert.Equal(t, 1, rec.ExamStyleProfile.DocumentCount)
	assert.True(t, rec.ExamStyleProfile.UsesSubtasks)
	assert.Nil(t, rec.ExerciseStyle, "no exercise documents means no exercise style profile")
}

func TestAggregateHash_OrderIndependent(t *testing.T) {
	a := docWith("a", domain.DocScript, 100, nil)
	b := docWith("b", domain.DocScript, 100, nil)

	assert.Equal(t, AggregateHash([]DocAnalysis{a, b}), AggregateHash([]DocAnalysis{b, a}))
	assert.NotEqual(t, AggregateHash([]DocAnalysis{a}), AggregateHash([]DocAnalysis{a, b}))
}
