package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

// CoverageRepo persists TopicCoverage counters, one record per
// (module, topic) with upsert semantics.
type CoverageRepo struct {
	store KeyedDocumentStore
}

func NewCoverageRepo(store KeyedDocumentStore) *CoverageRepo {
	return &CoverageRepo{store: store}
}

func coverageKey(moduleID, topicID string) string {
	return moduleID + ":" + topicID
}

func (r *CoverageRepo) Get(ctx context.Context, moduleID, topicID string) (*domain.TopicCoverage, error) {
	var rec domain.TopicCoverage
	if err := r.store.Get(ctx, CollectionTopicCoverage, coverageKey(moduleID, topicID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *CoverageRepo) Put(ctx context.Context, rec *domain.TopicCoverage) error {
	if rec.ModuleID == "" || rec.TopicID == "" {
		return fmt.Errorf("topic coverage missing module or topic id")
	}
	return r.store.Set(ctx, CollectionTopicCoverage, coverageKey(rec.ModuleID, rec.TopicID), rec)
}

// Increment records one generated task for the topic. Missing records are
// created on first increment.
func (r *CoverageRepo) Increment(ctx context.Context, moduleID, topicID, topicName string, difficulty domain.Difficulty, now time.Time) error {
	rec, err := r.Get(ctx, moduleID, topicID)
	if err != nil {
		if !IsNotFound(err) {
			return err
		}
		rec = &domain.TopicCoverage{ModuleID: moduleID, TopicID: topicID, TopicName: topicName}
	}
	rec.TasksGeneratedCount++
	rec.ByDifficulty.Add(difficulty)
	t := now.UTC()
	rec.LastGeneratedAt = &t
	if topicName != "" {
		rec.TopicName = topicName
	}
	return r.Put(ctx, rec)
}

// ListByModule returns all coverage counters of a module.
func (r *CoverageRepo) ListByModule(ctx context.Context, moduleID string) ([]*domain.TopicCoverage, error) {
	var out []*domain.TopicCoverage
	err := r.store.List(ctx, CollectionTopicCoverage, func(key string, raw []byte) error {
		var rec domain.TopicCoverage
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decoding coverage record %s: %w", key, err)
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

// Reset removes all coverage counters of a module. The only way counts go
// down.
func (r *CoverageRepo) Reset(ctx context.Context, moduleID string) error {
	recs, err := r.ListByModule(ctx, moduleID)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := r.store.Delete(ctx, CollectionTopicCoverage, coverageKey(rec.ModuleID, rec.TopicID)); err != nil {
			return err
		}
	}
	return nil
}
