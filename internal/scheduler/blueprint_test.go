package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

func topicWith(id, name string, weight float64) domain.Topic {
	return domain.Topic{TopicID: id, Name: name, Weight: weight}
}

func coverageWith(topicID string, count int) *domain.TopicCoverage {
	return &domain.TopicCoverage{ModuleID: "mod-1", TopicID: topicID, TasksGeneratedCount: count}
}

func TestBuildBlueprint_EmptyInputs(t *testing.T) {
	now := time.Now()
	assert.Empty(t, BuildBlueprint("mod-1", nil, nil, 10, now).Items)
	assert.Empty(t, BuildBlueprint("mod-1", []domain.Topic{topicWith("a", "A", 1)}, nil, 0, now).Items)
}

func TestBuildBlueprint_RoundRobinConvergesToEqualShares(t *testing.T) {
	topics := []domain.Topic{
		topicWith("top-a", "A", 3),
		topicWith("top-b", "B", 2),
		topicWith("top-c", "C", 1),
	}

	bp := BuildBlueprint("mod-1", topics, nil, 9, time.Now())
	require.Len(t, bp.Items, 9)

	perTopic := map[string]int{}
	for _, item := range bp.Items {
		perTopic[item.TopicID]++
	}
	assert.Equal(t, map[string]int{"top-a": 3, "top-b": 3, "top-c": 3}, perTopic)
	assert.Len(t, bp.CoveredTopicIDs, 3)
}

func TestBuildBlueprint_LeastCoveredTopicFirst(t *testing.T) {
	topics := []domain.Topic{
		topicWith("top-a", "A", 5),
		topicWith("top-b", "B", 1),
	}
	coverage := []*domain.TopicCoverage{
		coverageWith("top-a", 7),
		coverageWith("top-b", 1),
	}

	bp := BuildBlueprint("mod-1", topics, coverage, 3, time.Now())
	require.Len(t, bp.Items, 3)
	assert.Equal(t, "top-b", bp.Items[0].TopicID, "under-covered topic gets the first slot")
	assert.Equal(t, "top-a", bp.Items[1].TopicID)
	assert.Equal(t, "top-b", bp.Items[2].TopicID)
}

func TestBuildBlueprint_TiesBrokenByWeightThenID(t *testing.T) {
	topics := []domain.Topic{
		topicWith("top-z", "Z", 2),
		topicWith("top-a", "A", 2),
		topicWith("top-m", "M", 9),
	}

	bp := BuildBlueprint("mod-1", topics, nil, 3, time.Now())
	require.Len(t, bp.Items, 3)
	assert.Equal(t, "top-m", bp.Items[0].TopicID, "highest weight wins the count tie")
	assert.Equal(t, "top-a", bp.Items[1].TopicID, "weight tie falls back to topic id order")
	assert.Equal(t, "top-z", bp.Items[2].TopicID)
}

func TestBuildBlueprint_QuestionTypeCycleAndAnswerModes(t *testing.T) {
	topics := []domain.Topic{topicWith("top-a", "A", 1)}

	bp := BuildBlueprint("mod-1", topics, nil, len(domain.BlueprintQuestionCycle), time.Now())
	require.Len(t, bp.Items, len(domain.BlueprintQuestionCycle))

	for i, item := range bp.Items {
		expected := domain.BlueprintQuestionCycle[i]
		assert.Equal(t, expected, item.QuestionType)
		assert.Equal(t, domain.AnswerModeFor(expected), item.AnswerMode)
	}
}

func TestBuildBlueprint_Deterministic(t *testing.T) {
	topics := []domain.Topic{
		topicWith("top-a", "A", 2),
		topicWith("top-b", "B", 1),
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := BuildBlueprint("mod-1", topics, nil, 12, now)
	b := BuildBlueprint("mod-1", topics, nil, 12, now)
	assert.Equal(t, a, b, "same inputs must produce an identical blueprint")
}

func TestSampleDifficulty_MixtureOverManySlots(t *testing.T) {
	counts := map[domain.Difficulty]int{}
	const slots = 10000
	for i := 0; i < slots; i++ {
		counts[sampleDifficulty("mod-1", i)]++
	}

	assert.InDelta(t, 0.40, float64(counts[domain.DifficultyEasy])/slots, 0.05)
	assert.InDelta(t, 0.40, float64(counts[domain.DifficultyMedium])/slots, 0.05)
	assert.InDelta(t, 0.20, float64(counts[domain.DifficultyHard])/slots, 0.05)
}
