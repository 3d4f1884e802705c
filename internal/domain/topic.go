package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Topic is a canonicalized subject within a module. The id is derived from
// the module and the normalized name, so the same topic always maps to the
// same id.
type Topic struct {
	TopicID          string   `json:"topicId"`
	Name             string   `json:"name"`
	EvidenceSnippets []string `json:"evidenceSnippets,omitempty"`
	DocIDs           []string `json:"docIds,omitempty"`
	Weight           float64  `json:"weight"`
}

// TopicID derives the stable topic identity from module and canonical key.
func TopicID(moduleID, canonicalKey string) string {
	sum := sha256.Sum256([]byte(moduleID + ":" + canonicalKey))
	return hex.EncodeToString(sum[:16])
}

// DifficultyCounts tracks generated tasks per difficulty bucket.
type DifficultyCounts struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Add increments the bucket for d.
func (c *DifficultyCounts) Add(d Difficulty) {
	switch d {
	case DifficultyEasy:
		c.Easy++
	case DifficultyMedium:
		c.Medium++
	case DifficultyHard:
		c.Hard++
	}
}

// TopicCoverage is the durable per-(module, topic) generation counter.
// Counts only grow, except through an explicit reset.
type TopicCoverage struct {
	ModuleID            string           `json:"moduleId"`
	TopicID             string           `json:"topicId"`
	TopicName           string           `json:"topicName"`
	TasksGeneratedCount int              `json:"tasksGeneratedCount"`
	LastGeneratedAt     *time.Time       `json:"lastGeneratedAt,omitempty"`
	ByDifficulty        DifficultyCounts `json:"byDifficulty"`
}
