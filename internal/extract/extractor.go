// Package extract turns text chunks into evidence-validated structured
// knowledge via the external text-generation service.
package extract

import (
	"context"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/llm"
)

// ChunkResult is the outcome of analyzing one chunk. A failed chunk is
// non-fatal to the document; the success fraction becomes the document's
// coverage percentage.
type ChunkResult struct {
	ChunkIndex int
	Success    bool
	Error      string
	Payload    domain.AnalysisPayload
	// DroppedItems counts items rejected by evidence validation. Not an
	// error signal; rejection is the anti-hallucination path working.
	DroppedItems int
}

// Config holds extractor tuning.
type Config struct {
	// EvidenceThreshold is the required fraction of snippet tokens present
	// in the source. Zero selects DefaultEvidenceThreshold.
	EvidenceThreshold float64
}

// Extractor analyzes chunks through the generation service.
type Extractor struct {
	svc llm.TextGenerationService
	cfg Config
}

func New(svc llm.TextGenerationService, cfg Config) *Extractor {
	return &Extractor{svc: svc, cfg: cfg}
}

// AnalyzeChunk prompts the generation service for one chunk and
// evidence-validates every returned item against the chunk text. Items
// without a supported snippet are silently dropped; coverage notes are
// exempt since they report gaps, not facts.
func (e *Extractor) AnalyzeChunk(ctx context.Context, chunk domain.TextChunk, docType domain.DocumentType, totalChunks int) ChunkResult {
	result := ChunkResult{ChunkIndex: chunk.Index}

	resp, err := e.svc.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskExtract,
		SystemPrompt: extractSystemPrompt,
		UserPrompt:   BuildChunkPrompt(chunk.Text, docType, chunk.Index, totalChunks),
		JSONMode:     true,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	parsed, err := llm.ExtractJSON[domain.AnalysisPayload](resp.Text, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	validator := NewEvidenceValidator(chunk.Text, e.cfg.EvidenceThreshold)
	result.Payload, result.DroppedItems = validatePayload(parsed, validator)
	result.Payload.SchemaVersion = domain.AnalysisSchemaVersion
	result.Success = true
	return result
}

// validatePayload keeps only items with at least one supported evidence
// snippet and reports how many were dropped.
func validatePayload(in domain.AnalysisPayload, v *EvidenceValidator) (domain.AnalysisPayload, int) {
	out := domain.AnalysisPayload{SchemaVersion: in.SchemaVersion}
	dropped := 0

	for _, c := range in.Concepts {
		if kept := v.FilterSupported(c.EvidenceSnippets); len(kept) > 0 {
			c.EvidenceSnippets = kept
			out.Concepts = append(out.Concepts, c)
		} else {
			dropped++
		}
	}
	for _, f := range in.Formulas {
		if kept := v.FilterSupported(f.EvidenceSnippets); len(kept) > 0 {
			f.EvidenceSnippets = kept
			out.Formulas = append(out.Formulas, f)
		} else {
			dropped++
		}
	}
	for _, p := range in.Procedures {
		if kept := v.FilterSupported(p.EvidenceSnippets); len(kept) > 0 {
			p.EvidenceSnippets = kept
			out.Procedures = append(out.Procedures, p)
		} else {
			dropped++
		}
	}
	for _, w := range in.WorkedExamples {
		if kept := v.FilterSupported(w.EvidenceSnippets); len(kept) > 0 {
			w.EvidenceSnippets = kept
			out.WorkedExamples = append(out.WorkedExamples, w)
		} else {
			dropped++
		}
	}
	for _, ex := range in.Exercises {
		if kept := v.FilterSupported(ex.EvidenceSnippets); len(kept) > 0 {
			ex.EvidenceSnippets = kept
			out.Exercises = append(out.Exercises, ex)
		} else {
			dropped++
		}
	}
	for _, t := range in.Topics {
		if kept := v.FilterSupported(t.EvidenceSnippets); len(kept) > 0 {
			t.EvidenceSnippets = kept
			out.Topics = append(out.Topics, t)
		} else {
			dropped++
		}
	}

	// Coverage notes carry no evidence requirement.
	out.CoverageNotes = in.CoverageNotes

	return out, dropped
}
