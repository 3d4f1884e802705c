package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

// TaskRepo persists generated tasks. The dedup layers read the corpus from
// here to build their fingerprint map and similarity candidates.
type TaskRepo struct {
	store KeyedDocumentStore
}

func NewTaskRepo(store KeyedDocumentStore) *TaskRepo {
	return &TaskRepo{store: store}
}

func (r *TaskRepo) Get(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := r.store.Get(ctx, CollectionTasks, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) Put(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		return fmt.Errorf("task missing id")
	}
	return r.store.Set(ctx, CollectionTasks, t.ID, t)
}

// ListByModule returns all tasks of a module.
func (r *TaskRepo) ListByModule(ctx context.Context, moduleID string) ([]*domain.Task, error) {
	var out []*domain.Task
	err := r.store.List(ctx, CollectionTasks, func(key string, raw []byte) error {
		var t domain.Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("decoding task %s: %w", key, err)
		}
		if t.ModuleID == moduleID {
			out = append(out, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
