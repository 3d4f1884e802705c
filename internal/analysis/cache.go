package analysis

import (
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/normalize"
)

// needsAnalysis decides whether a document must be (re)analyzed given its
// cached record. True when no record exists, the previous run errored, the
// content hash changed, or the analysis schema version moved. Everything
// else is a cache hit: the record is authoritative and re-invoking the
// pipeline is a no-op.
func needsAnalysis(rec *domain.DocumentAnalysisRecord, sourceHash string) bool {
	if rec == nil {
		return true
	}
	if rec.Status == domain.StatusError {
		return true
	}
	if rec.SourceHash != sourceHash {
		return true
	}
	if rec.AnalysisVersion != domain.AnalysisSchemaVersion {
		return true
	}
	return false
}

// SourceHash returns the cache key hash for a document's content.
func SourceHash(doc *domain.Document) string {
	return normalize.ContentHash(doc.Text)
}
