package domain

import "time"

// Task is a generated practice task as persisted in the task corpus. The
// dedup layers consume only its text fields.
type Task struct {
	ID          string     `json:"id"`
	ModuleID    string     `json:"moduleId"`
	TopicID     string     `json:"topicId,omitempty"`
	Question    string     `json:"question"`
	Solution    string     `json:"solution"`
	Tags        []string   `json:"tags,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
