package domain

import "time"

// BlueprintItem is one planned generation slot: which topic, how hard, and
// what kind of question, plus the evidence that grounds the prompt.
type BlueprintItem struct {
	TopicID          string       `json:"topicId"`
	TopicName        string       `json:"topicName"`
	Difficulty       Difficulty   `json:"difficulty"`
	QuestionType     QuestionType `json:"questionType"`
	AnswerMode       AnswerMode   `json:"answerMode"`
	EvidenceSnippets []string     `json:"evidenceSnippets,omitempty"`
	DocIDs           []string     `json:"docIds,omitempty"`
}

// TaskBlueprint is an ephemeral generation plan. Coverage counters are the
// durable state; blueprints are regenerated on demand and never stored as a
// source of truth.
type TaskBlueprint struct {
	ModuleID        string          `json:"moduleId"`
	TargetCount     int             `json:"targetCount"`
	Items           []BlueprintItem `json:"items"`
	CoveredTopicIDs []string        `json:"coveredTopicIds"`
	CreatedAt       time.Time       `json:"createdAt"`
}
