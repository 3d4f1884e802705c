package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

// mapEmbedder returns fixed vectors per text.
type mapEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (m *mapEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float64{0, 0, 1}, nil
}

func task(id, question string) *domain.Task {
	return &domain.Task{ID: id, ModuleID: "mod-1", Question: question}
}

func TestSoftSimilarity_IdenticalText(t *testing.T) {
	c := NewSemanticChecker(DefaultConfig(), nil)
	sim := c.SoftSimilarity("Vereinfachen Sie den Ausdruck", "Vereinfachen Sie den Ausdruck")
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestSoftSimilarity_ReorderingScoresBelowThreshold(t *testing.T) {
	c := NewSemanticChecker(DefaultConfig(), nil)

	sim := c.SoftSimilarity("the cat sat on the mat", "the mat had the cat sat on it")
	assert.Less(t, sim, DefaultConfig().HeuristicThreshold,
		"shared vocabulary with different order must not count as a duplicate")
	assert.Greater(t, sim, 0.3, "it is still clearly related text")
}

func TestFindDuplicate_HeuristicPath(t *testing.T) {
	c := NewSemanticChecker(DefaultConfig(), nil)
	existing := []*domain.Task{
		task("t1", "Vereinfachen Sie den booleschen Ausdruck"),
		task("t2", "Zeichnen Sie das KV-Diagramm"),
	}

	res, err := c.FindDuplicate(context.Background(), "Vereinfachen Sie den booleschen Ausdruck", existing, 0)
	require.NoError(t, err)
	assert.True(t, res.IsDuplicate)
	assert.Equal(t, "t1", res.MatchingTaskID)
	assert.Equal(t, MethodHeuristic, res.Method)
}

func TestFindDuplicate_NoMatchClearsTaskID(t *testing.T) {
	c := NewSemanticChecker(DefaultConfig(), nil)
	existing := []*domain.Task{task("t1", "Zeichnen Sie das KV-Diagramm")}

	res, err := c.FindDuplicate(context.Background(), "Erklären Sie Rekursion", existing, 0)
	require.NoError(t, err)
	assert.False(t, res.IsDuplicate)
	assert.Empty(t, res.MatchingTaskID, "below threshold the match id must not leak")
}

func TestFindDuplicate_ThresholdBoundary(t *testing.T) {
	c := NewSemanticChecker(DefaultConfig(), nil)
	existing := []*domain.Task{task("t1", "exakt gleicher text")}

	hit := c.findByHeuristic("exakt gleicher text", existing, 1.0)
	assert.True(t, hit.IsDuplicate, "similarity equal to the threshold counts as duplicate")

	miss := c.findByHeuristic("exakt gleicher text anders", existing, 1.0)
	assert.False(t, miss.IsDuplicate)
}

func TestFindDuplicate_EmbeddingPath(t *testing.T) {
	emb := &mapEmbedder{vectors: map[string][]float64{
		"candidate text": {1, 0, 0},
		"near duplicate": {0.99, 0.14, 0},
		"unrelated":      {0, 1, 0},
	}}
	c := NewSemanticChecker(DefaultConfig(), emb)
	existing := []*domain.Task{task("t1", "near duplicate"), task("t2", "unrelated")}

	res, err := c.FindDuplicate(context.Background(), "candidate text", existing, 0)
	require.NoError(t, err)
	assert.Equal(t, MethodEmbedding, res.Method)
	assert.True(t, res.IsDuplicate)
	assert.Equal(t, "t1", res.MatchingTaskID)
}

func TestFindDuplicate_EmbeddingFailureFallsBackToHeuristic(t *testing.T) {
	emb := &mapEmbedder{err: errors.New("model not loaded")}
	c := NewSemanticChecker(DefaultConfig(), emb)
	existing := []*domain.Task{task("t1", "Vereinfachen Sie den Ausdruck")}

	res, err := c.FindDuplicate(context.Background(), "Vereinfachen Sie den Ausdruck", existing, 0)
	require.NoError(t, err)
	assert.Equal(t, MethodHeuristic, res.Method, "transient embedding failure falls back transparently")
	assert.True(t, res.IsDuplicate)
}

func TestFindDuplicate_VectorLengthMismatchIsFatal(t *testing.T) {
	emb := &mapEmbedder{vectors: map[string][]float64{
		"candidate": {1, 0},
		"existing":  {1, 0, 0},
	}}
	c := NewSemanticChecker(DefaultConfig(), emb)

	_, err := c.FindDuplicate(context.Background(), "candidate", []*domain.Task{task("t1", "existing")}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVectorLength, "dimension mismatch is a caller bug, never a fallback")
}

func TestCosine(t *testing.T) {
	sim, err := Cosine([]float64{1, 0}, []float64{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)

	sim, err = Cosine([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)

	sim, err = Cosine([]float64{0, 0}, []float64{1, 0})
	require.NoError(t, err)
	assert.Zero(t, sim, "zero vector yields zero similarity, not NaN")

	_, err = Cosine([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrVectorLength)
}

func TestTopKSimilar_RankingAndTopicFilter(t *testing.T) {
	c := NewSemanticChecker(DefaultConfig(), nil)
	existing := []*domain.Task{
		{ID: "t1", TopicID: "top-a", Question: "Vereinfachen Sie den Ausdruck"},
		{ID: "t2", TopicID: "top-a", Question: "Vereinfachen Sie den Ausdruck vollständig"},
		{ID: "t3", TopicID: "top-b", Question: "Vereinfachen Sie den Ausdruck"},
	}

	ranked := c.TopKSimilar("Vereinfachen Sie den Ausdruck", existing, 2, "top-a")
	require.Len(t, ranked, 2)
	assert.Equal(t, "t1", ranked[0].TaskID, "exact match ranks first, topic filter drops t3")
	assert.Equal(t, "t2", ranked[1].TaskID)

	assert.Nil(t, c.TopKSimilar("x", existing, 0, ""))
}
