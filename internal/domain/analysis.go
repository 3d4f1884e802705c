package domain

import (
	"encoding/json"
	"time"
)

// AnalysisSchemaVersion is the payload schema produced by the current
// extractor. Version 1 payloads (flat item list) are migrated at read time
// and never written back.
const AnalysisSchemaVersion = 2

// Concept is an evidence-backed definition or term.
type Concept struct {
	Term             string   `json:"term"`
	Definition       string   `json:"definition"`
	EvidenceSnippets []string `json:"evidenceSnippets"`
}

// Formula is an evidence-backed formula, keyed by its whitespace-stripped
// LaTeX form during merging.
type Formula struct {
	Name             string   `json:"name,omitempty"`
	Latex            string   `json:"latex"`
	Meaning          string   `json:"meaning,omitempty"`
	EvidenceSnippets []string `json:"evidenceSnippets"`
}

// Procedure is a named multi-step method or algorithm.
type Procedure struct {
	Name             string   `json:"name"`
	Steps            []string `json:"steps"`
	EvidenceSnippets []string `json:"evidenceSnippets"`
}

// WorkedExample is a fully solved example found in the source.
type WorkedExample struct {
	Problem          string   `json:"problem"`
	Approach         string   `json:"approach,omitempty"`
	EvidenceSnippets []string `json:"evidenceSnippets"`
}

// ExerciseItem is an unsolved exercise statement found in the source.
type ExerciseItem struct {
	Question         string   `json:"question"`
	Points           string   `json:"points,omitempty"`
	Subtasks         []string `json:"subtasks,omitempty"`
	EvidenceSnippets []string `json:"evidenceSnippets"`
}

// TopicMention is a raw topic string with its supporting evidence, prior to
// canonicalization.
type TopicMention struct {
	Name             string   `json:"name"`
	EvidenceSnippets []string `json:"evidenceSnippets"`
}

// CoverageNote reports an analysis gap ("section 3 is a diagram, skipped").
// Notes carry no evidence requirement since they describe the analysis
// itself, not facts from the source.
type CoverageNote struct {
	Note string `json:"note"`
}

// StructuralSignals are heuristic summaries derived by keyword/regex
// scanning of merged exercise/exam items. They are low-confidence outputs,
// structurally separated from the evidence-validated lists.
type StructuralSignals struct {
	UsesTables      bool     `json:"usesTables"`
	UsesSubtasks    bool     `json:"usesSubtasks"`
	ImperativeVerbs []string `json:"imperativeVerbs,omitempty"`
	PointsPatterns  []string `json:"pointsPatterns,omitempty"`
}

// AnalysisPayload is the merged, document-level extraction result (v2).
type AnalysisPayload struct {
	SchemaVersion  int                `json:"schemaVersion"`
	Concepts       []Concept          `json:"concepts,omitempty"`
	Formulas       []Formula          `json:"formulas,omitempty"`
	Procedures     []Procedure        `json:"procedures,omitempty"`
	WorkedExamples []WorkedExample    `json:"workedExamples,omitempty"`
	Exercises      []ExerciseItem     `json:"exercises,omitempty"`
	Topics         []TopicMention     `json:"topics,omitempty"`
	CoverageNotes  []CoverageNote     `json:"coverageNotes,omitempty"`
	Signals        *StructuralSignals `json:"signals,omitempty"`
}

// LegacyItem is the v1 flat extraction shape: one row per fact with a free
// type tag. Retained only for read-time migration.
type LegacyItem struct {
	Type             string   `json:"type"`
	Value            string   `json:"value"`
	Details          string   `json:"details,omitempty"`
	EvidenceSnippets []string `json:"evidenceSnippets"`
}

// LegacyPayload is the v1 analysis payload shape.
type LegacyPayload struct {
	SchemaVersion int          `json:"schemaVersion,omitempty"`
	Items         []LegacyItem `json:"items"`
}

// DocumentAnalysisRecord is the durable per-document analysis state. Field
// names and status values are a stable contract consumed by other
// subsystems.
type DocumentAnalysisRecord struct {
	ID                  string         `json:"id"`
	ModuleID            string         `json:"moduleId"`
	DocumentID          string         `json:"documentId"`
	DocumentType        DocumentType   `json:"documentType"`
	SourceHash          string         `json:"sourceHash"`
	AnalysisVersion     int            `json:"analysisVersion"`
	Status              AnalysisStatus `json:"status"`
	CoveragePercent     float64        `json:"coveragePercent"`
	// Payload is kept raw so v1 records can be migrated at read time via
	// DecodePayload without being rewritten.
	Payload             json.RawMessage `json:"analysisPayload,omitempty"`
	ChunkCount          int            `json:"chunkCount"`
	ProcessedChunkCount int            `json:"processedChunkCount"`
	LastAnalyzedAt      *time.Time     `json:"lastAnalyzedAt,omitempty"`
	ErrorMessage        string         `json:"errorMessage,omitempty"`
}

// ModuleProfileRecord aggregates all done document analyses of a module.
// SourceHashAggregate is the hash of the sorted constituent document hashes;
// any constituent change invalidates the aggregate.
type ModuleProfileRecord struct {
	ModuleID            string          `json:"moduleId"`
	SourceHashAggregate string          `json:"sourceHashAggregate"`
	ProfileVersion      int             `json:"profileVersion"`
	ExamStyleProfile    *StyleProfile   `json:"examStyleProfile,omitempty"`
	ExerciseStyle       *StyleProfile   `json:"exerciseStyleProfile,omitempty"`
	Knowledge           ModuleKnowledge `json:"knowledgeIndex"`
	Status              AnalysisStatus  `json:"status"`
	CoveragePercent     float64         `json:"coveragePercent"`
}

// StyleProfile summarizes how exercises or exams in a module are written.
// Built from heuristic signals, so weaker-confidence than the knowledge
// index.
type StyleProfile struct {
	DocumentCount   int      `json:"documentCount"`
	UsesTables      bool     `json:"usesTables"`
	UsesSubtasks    bool     `json:"usesSubtasks"`
	ImperativeVerbs []string `json:"imperativeVerbs,omitempty"`
	PointsPatterns  []string `json:"pointsPatterns,omitempty"`
}

// ModuleKnowledge is the module-level merged knowledge index with an
// inverted topic->document index for evidence retrieval.
type ModuleKnowledge struct {
	Concepts   []Concept   `json:"concepts,omitempty"`
	Formulas   []Formula   `json:"formulas,omitempty"`
	Procedures []Procedure `json:"procedures,omitempty"`
	Topics     []Topic     `json:"topics,omitempty"`
	// TopicDocs maps a canonical topic id to the documents mentioning it.
	TopicDocs map[string][]string `json:"topicDocs,omitempty"`
}
