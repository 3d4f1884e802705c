package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record does not exist in its collection.
var ErrNotFound = errors.New("record not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Collection names used by the core. Their record shapes are the stable
// contract other subsystems consume.
const (
	CollectionDocumentAnalyses = "document_analyses"
	CollectionModuleProfiles   = "module_profiles"
	CollectionTopicCoverage    = "topic_coverage"
	CollectionTasks            = "tasks"
	CollectionAnalysisQueue    = "analysis_queue"
)

// KeyedDocumentStore persists JSON-serializable records keyed by id within
// named collections. It is the only persistence capability the core
// consumes; no transactions are required beyond whole-record read/write
// under the single-writer assumption.
type KeyedDocumentStore interface {
	// Get unmarshals the record at (collection, key) into out.
	// Returns ErrNotFound if absent.
	Get(ctx context.Context, collection, key string, out any) error

	// Set marshals value and writes it at (collection, key), replacing any
	// existing record.
	Set(ctx context.Context, collection, key string, value any) error

	// Delete removes the record at (collection, key). Deleting a missing
	// record is not an error.
	Delete(ctx context.Context, collection, key string) error

	// List iterates all records of a collection in key order.
	List(ctx context.Context, collection string, each func(key string, raw []byte) error) error
}
