package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodePayload decodes a serialized analysis payload, migrating v1 (flat
// item list) records to the current shape. The migration happens at read
// time only; the migrated form is never persisted back implicitly.
func DecodePayload(raw json.RawMessage) (*AnalysisPayload, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var probe struct {
		SchemaVersion int             `json:"schemaVersion"`
		Items         json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decoding analysis payload: %w", err)
	}

	if probe.SchemaVersion < AnalysisSchemaVersion && len(probe.Items) > 0 {
		var legacy LegacyPayload
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, fmt.Errorf("decoding legacy analysis payload: %w", err)
		}
		return MigrateLegacyPayload(legacy), nil
	}

	var payload AnalysisPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding analysis payload: %w", err)
	}
	if payload.SchemaVersion == 0 {
		payload.SchemaVersion = AnalysisSchemaVersion
	}
	return &payload, nil
}

// EncodePayload serializes a payload for persistence, stamping the current
// schema version.
func EncodePayload(p *AnalysisPayload) (json.RawMessage, error) {
	if p == nil {
		return nil, nil
	}
	p.SchemaVersion = AnalysisSchemaVersion
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding analysis payload: %w", err)
	}
	return raw, nil
}

// MigrateLegacyPayload converts a v1 flat item list into the typed v2
// shape. Pure function; unknown item types are mapped to concepts so no
// validated fact is lost.
func MigrateLegacyPayload(legacy LegacyPayload) *AnalysisPayload {
	out := &AnalysisPayload{SchemaVersion: AnalysisSchemaVersion}
	for _, item := range legacy.Items {
		switch strings.ToLower(strings.TrimSpace(item.Type)) {
		case "formula":
			out.Formulas = append(out.Formulas, Formula{
				Latex:            item.Value,
				Meaning:          item.Details,
				EvidenceSnippets: item.EvidenceSnippets,
			})
		case "procedure", "method":
			out.Procedures = append(out.Procedures, Procedure{
				Name:             item.Value,
				Steps:            splitSteps(item.Details),
				EvidenceSnippets: item.EvidenceSnippets,
			})
		case "example", "worked_example":
			out.WorkedExamples = append(out.WorkedExamples, WorkedExample{
				Problem:          item.Value,
				Approach:         item.Details,
				EvidenceSnippets: item.EvidenceSnippets,
			})
		case "exercise", "task":
			out.Exercises = append(out.Exercises, ExerciseItem{
				Question:         item.Value,
				EvidenceSnippets: item.EvidenceSnippets,
			})
		case "topic":
			out.Topics = append(out.Topics, TopicMention{
				Name:             item.Value,
				EvidenceSnippets: item.EvidenceSnippets,
			})
		case "coverage_note", "note":
			out.CoverageNotes = append(out.CoverageNotes, CoverageNote{Note: item.Value})
		default:
			out.Concepts = append(out.Concepts, Concept{
				Term:             item.Value,
				Definition:       item.Details,
				EvidenceSnippets: item.EvidenceSnippets,
			})
		}
	}
	return out
}

func splitSteps(details string) []string {
	if details == "" {
		return nil
	}
	var steps []string
	for _, line := range strings.Split(details, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}
