package store

import (
	"context"
)

// QueueSnapshot is the durable state of the serial analysis queue: pending
// document ids in order, plus the document currently being analyzed (empty
// when idle). Read-modify-written as a whole under the single-writer
// assumption.
type QueueSnapshot struct {
	Pending []string `json:"pending"`
	Current string   `json:"current,omitempty"`
}

const queueSnapshotKey = "state"

// QueueRepo persists the analysis queue snapshot.
type QueueRepo struct {
	store KeyedDocumentStore
}

func NewQueueRepo(store KeyedDocumentStore) *QueueRepo {
	return &QueueRepo{store: store}
}

// Load returns the persisted snapshot, or an empty one if none exists.
func (r *QueueRepo) Load(ctx context.Context) (*QueueSnapshot, error) {
	var snap QueueSnapshot
	if err := r.store.Get(ctx, CollectionAnalysisQueue, queueSnapshotKey, &snap); err != nil {
		if IsNotFound(err) {
			return &QueueSnapshot{}, nil
		}
		return nil, err
	}
	return &snap, nil
}

func (r *QueueRepo) Save(ctx context.Context, snap *QueueSnapshot) error {
	return r.store.Set(ctx, CollectionAnalysisQueue, queueSnapshotKey, snap)
}
