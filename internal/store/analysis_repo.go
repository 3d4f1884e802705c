package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

// AnalysisRepo persists DocumentAnalysisRecords keyed by document id.
type AnalysisRepo struct {
	store KeyedDocumentStore
}

func NewAnalysisRepo(store KeyedDocumentStore) *AnalysisRepo {
	return &AnalysisRepo{store: store}
}

func (r *AnalysisRepo) Get(ctx context.Context, documentID string) (*domain.DocumentAnalysisRecord, error) {
	var rec domain.DocumentAnalysisRecord
	if err := r.store.Get(ctx, CollectionDocumentAnalyses, documentID, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *AnalysisRepo) Put(ctx context.Context, rec *domain.DocumentAnalysisRecord) error {
	if rec.DocumentID == "" {
		return fmt.Errorf("analysis record missing document id")
	}
	return r.store.Set(ctx, CollectionDocumentAnalyses, rec.DocumentID, rec)
}

func (r *AnalysisRepo) Delete(ctx context.Context, documentID string) error {
	return r.store.Delete(ctx, CollectionDocumentAnalyses, documentID)
}

// ListByModule returns all analysis records belonging to a module.
func (r *AnalysisRepo) ListByModule(ctx context.Context, moduleID string) ([]*domain.DocumentAnalysisRecord, error) {
	var out []*domain.DocumentAnalysisRecord
	err := r.store.List(ctx, CollectionDocumentAnalyses, func(key string, raw []byte) error {
		var rec domain.DocumentAnalysisRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decoding analysis record %s: %w", key, err)
		}
		if rec.ModuleID == moduleID {
			out = append(out, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every analysis record. Used by startup recovery.
func (r *AnalysisRepo) ListAll(ctx context.Context) ([]*domain.DocumentAnalysisRecord, error) {
	var out []*domain.DocumentAnalysisRecord
	err := r.store.List(ctx, CollectionDocumentAnalyses, func(key string, raw []byte) error {
		var rec domain.DocumentAnalysisRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decoding analysis record %s: %w", key, err)
		}
		out = append(out, &rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
