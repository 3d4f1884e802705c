package testutil

import (
	"context"
	"fmt"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/llm"
)

// ScriptedGenerator is a TextGenerationService returning canned responses
// in order. It records every prompt it receives.
type ScriptedGenerator struct {
	Responses []string
	Errs      []error
	Calls     []llm.GenerateRequest
	Embedding []float64
	EmbedErr  error
}

func (s *ScriptedGenerator) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	idx := len(s.Calls)
	s.Calls = append(s.Calls, req)
	if idx < len(s.Errs) && s.Errs[idx] != nil {
		return nil, s.Errs[idx]
	}
	text := ""
	if idx < len(s.Responses) {
		text = s.Responses[idx]
	} else if len(s.Responses) > 0 {
		text = s.Responses[len(s.Responses)-1]
	}
	return &llm.GenerateResponse{Text: text, Model: "scripted"}, nil
}

func (s *ScriptedGenerator) Embed(ctx context.Context, text string) ([]float64, error) {
	if s.EmbedErr != nil {
		return nil, s.EmbedErr
	}
	return s.Embedding, nil
}

func (s *ScriptedGenerator) Available(ctx context.Context) bool { return true }

// MemDocumentSource serves documents from a map, keyed by document id.
type MemDocumentSource map[string]*domain.Document

func (m MemDocumentSource) Document(ctx context.Context, documentID string) (*domain.Document, error) {
	if doc, ok := m[documentID]; ok {
		return doc, nil
	}
	return nil, fmt.Errorf("no document %s", documentID)
}

// NewScriptDocument builds a small script document fixture.
func NewScriptDocument(id, moduleID, text string) *domain.Document {
	return &domain.Document{
		DocumentID:   id,
		ModuleID:     moduleID,
		DocumentType: domain.DocScript,
		Text:         text,
	}
}
