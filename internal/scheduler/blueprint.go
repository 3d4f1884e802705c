// Package scheduler plans which topics, difficulties, and question types
// to generate next, biased toward under-covered topics.
package scheduler

import (
	"hash/fnv"
	"sort"
	"strconv"
	"time"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

// difficultyMixture is the fixed 40/40/20 easy/medium/hard split applied
// across blueprint slots.
var difficultyMixture = []struct {
	difficulty domain.Difficulty
	upperBound uint64 // exclusive, out of 100
}{
	{domain.DifficultyEasy, 40},
	{domain.DifficultyMedium, 80},
	{domain.DifficultyHard, 100},
}

// rankedTopic pairs a topic with its current coverage count for sorting.
type rankedTopic struct {
	topic domain.Topic
	count int
}

// BuildBlueprint assigns targetCount generation slots round-robin over the
// module's topics, least-covered first. Cold start (no coverage records)
// degrades to plain round-robin by weight. No topics yields an empty
// blueprint, never an error.
func BuildBlueprint(moduleID string, topics []domain.Topic, coverage []*domain.TopicCoverage, targetCount int, now time.Time) domain.TaskBlueprint {
	bp := domain.TaskBlueprint{
		ModuleID:    moduleID,
		TargetCount: targetCount,
		CreatedAt:   now.UTC(),
	}
	if len(topics) == 0 || targetCount <= 0 {
		return bp
	}

	counts := make(map[string]int, len(coverage))
	for _, c := range coverage {
		counts[c.TopicID] = c.TasksGeneratedCount
	}

	ranked := make([]rankedTopic, 0, len(topics))
	for _, t := range topics {
		ranked = append(ranked, rankedTopic{topic: t, count: counts[t.TopicID]})
	}
	sortRanked(ranked)

	covered := make(map[string]bool, len(ranked))
	for slot := 0; slot < targetCount; slot++ {
		rt := ranked[slot%len(ranked)]
		qType := domain.BlueprintQuestionCycle[slot%len(domain.BlueprintQuestionCycle)]
		bp.Items = append(bp.Items, domain.BlueprintItem{
			TopicID:          rt.topic.TopicID,
			TopicName:        rt.topic.Name,
			Difficulty:       sampleDifficulty(moduleID, slot),
			QuestionType:     qType,
			AnswerMode:       domain.AnswerModeFor(qType),
			EvidenceSnippets: rt.topic.EvidenceSnippets,
			DocIDs:           rt.topic.DocIDs,
		})
		if !covered[rt.topic.TopicID] {
			covered[rt.topic.TopicID] = true
			bp.CoveredTopicIDs = append(bp.CoveredTopicIDs, rt.topic.TopicID)
		}
	}
	return bp
}

// sortRanked orders topics by the canonical rules: fewest generated tasks
// first, ties broken by descending weight (more evidence-backed topics
// win), then by topic id for determinism.
func sortRanked(ranked []rankedTopic) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.count != b.count {
			return a.count < b.count
		}
		if a.topic.Weight != b.topic.Weight {
			return a.topic.Weight > b.topic.Weight
		}
		return a.topic.TopicID < b.topic.TopicID
	})
}

// sampleDifficulty maps a slot deterministically onto the 40/40/20
// mixture. Hash-based so the proportions hold over many slots while
// blueprints stay reproducible.
func sampleDifficulty(moduleID string, slot int) domain.Difficulty {
	h := fnv.New64a()
	h.Write([]byte(moduleID))
	h.Write([]byte(":"))
	h.Write([]byte(strconv.Itoa(slot)))
	bucket := h.Sum64() % 100
	for _, m := range difficultyMixture {
		if bucket < m.upperBound {
			return m.difficulty
		}
	}
	return domain.DifficultyHard
}
