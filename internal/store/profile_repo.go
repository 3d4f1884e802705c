package store

import (
	"context"
	"fmt"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

// ProfileRepo persists ModuleProfileRecords keyed by module id.
type ProfileRepo struct {
	store KeyedDocumentStore
}

func NewProfileRepo(store KeyedDocumentStore) *ProfileRepo {
	return &ProfileRepo{store: store}
}

func (r *ProfileRepo) Get(ctx context.Context, moduleID string) (*domain.ModuleProfileRecord, error) {
	var rec domain.ModuleProfileRecord
	if err := r.store.Get(ctx, CollectionModuleProfiles, moduleID, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ProfileRepo) Put(ctx context.Context, rec *domain.ModuleProfileRecord) error {
	if rec.ModuleID == "" {
		return fmt.Errorf("module profile missing module id")
	}
	return r.store.Set(ctx, CollectionModuleProfiles, rec.ModuleID, rec)
}

// Invalidate clears the aggregate hash and demotes the profile to queued so
// the next aggregation pass rebuilds it.
func (r *ProfileRepo) Invalidate(ctx context.Context, moduleID string) error {
	rec, err := r.Get(ctx, moduleID)
	if err != nil {
		return err
	}
	rec.SourceHashAggregate = ""
	rec.Status = domain.StatusQueued
	return r.Put(ctx, rec)
}
