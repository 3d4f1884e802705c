// Package analysis owns the document analysis cache: a content-hash keyed
// pipeline of chunking, extraction, and merging behind a serial job queue
// with a processing-status state machine.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/chunk"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/extract"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/merge"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/store"
)

// DocumentSource supplies document content for queued ids. The core never
// stores document text itself; documents are external, read-only
// collaborators.
type DocumentSource interface {
	Document(ctx context.Context, documentID string) (*domain.Document, error)
}

// Service is the analysis cache and pipeline. It owns the serial queue and
// all analysis/profile records; shared state is read-modify-written as a
// whole under the single-writer model.
type Service struct {
	analyses  *store.AnalysisRepo
	profiles  *store.ProfileRepo
	queue     *store.QueueRepo
	source    DocumentSource
	extractor *extract.Extractor
	merger    *merge.Merger
	observer  Observer
	cfg       Config
	now       func() time.Time

	mu   sync.Mutex
	docs map[string]*domain.Document // enqueued documents not yet analyzed
}

// NewService wires the pipeline. observer may be nil.
func NewService(
	analyses *store.AnalysisRepo,
	profiles *store.ProfileRepo,
	queue *store.QueueRepo,
	source DocumentSource,
	extractor *extract.Extractor,
	merger *merge.Merger,
	observer Observer,
	cfg Config,
) *Service {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Service{
		analyses:  analyses,
		profiles:  profiles,
		queue:     queue,
		source:    source,
		extractor: extractor,
		merger:    merger,
		observer:  observer,
		cfg:       cfg,
		now:       time.Now,
		docs:      map[string]*domain.Document{},
	}
}

// NeedsAnalysis reports whether the document's cached record is stale.
// Safe to call unconditionally; a done record with matching hash and
// version returns false.
func (s *Service) NeedsAnalysis(ctx context.Context, doc *domain.Document) (bool, error) {
	rec, err := s.analyses.Get(ctx, doc.DocumentID)
	if err != nil {
		if store.IsNotFound(err) {
			return true, nil
		}
		return false, err
	}
	return needsAnalysis(rec, SourceHash(doc)), nil
}

// Enqueue adds the document to the analysis queue if it needs analysis and
// is not already queued or running. Returns whether it was enqueued.
// Redundant calls are no-ops, never errors.
func (s *Service) Enqueue(ctx context.Context, doc *domain.Document) (bool, error) {
	needed, err := s.NeedsAnalysis(ctx, doc)
	if err != nil {
		return false, err
	}
	if !needed {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.queue.Load(ctx)
	if err != nil {
		return false, err
	}
	// Already tracked: still refresh the in-memory copy, since after a
	// restart the persisted queue outlives the map and Run would otherwise
	// have no content to analyze.
	if snap.Current == doc.DocumentID {
		s.docs[doc.DocumentID] = doc
		return false, nil
	}
	for _, id := range snap.Pending {
		if id == doc.DocumentID {
			s.docs[doc.DocumentID] = doc
			return false, nil
		}
	}

	rec, err := s.analyses.Get(ctx, doc.DocumentID)
	if err != nil && !store.IsNotFound(err) {
		return false, err
	}
	if rec == nil {
		rec = &domain.DocumentAnalysisRecord{
			ID:         uuid.NewString(),
			DocumentID: doc.DocumentID,
		}
	}
	rec.ModuleID = doc.ModuleID
	rec.DocumentType = doc.DocumentType
	rec.Status = domain.StatusQueued
	if err := s.analyses.Put(ctx, rec); err != nil {
		return false, err
	}

	snap.Pending = append(snap.Pending, doc.DocumentID)
	if err := s.queue.Save(ctx, snap); err != nil {
		return false, err
	}
	s.docs[doc.DocumentID] = doc
	return true, nil
}

// Cancel removes a pending job from the queue. A job already running runs
// to completion; each chunk call has bounded retries, so its worst-case
// duration is bounded too.
func (s *Service) Cancel(ctx context.Context, documentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.queue.Load(ctx)
	if err != nil {
		return false, err
	}
	kept := snap.Pending[:0]
	removed := false
	for _, id := range snap.Pending {
		if id == documentID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		return false, nil
	}
	snap.Pending = kept
	if err := s.queue.Save(ctx, snap); err != nil {
		return false, err
	}
	delete(s.docs, documentID)
	return true, nil
}

// Run processes queued jobs strictly sequentially until the queue is empty
// or ctx is canceled. One document runs to completion before the next
// begins.
func (s *Service) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		documentID, ok, err := s.takeNext(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		doc, err := s.lookupDocument(ctx, documentID)
		if err != nil {
			// Document vanished from its source: record the failure and
			// keep draining the queue.
			s.recordMissingDocument(ctx, documentID, err)
		} else {
			s.analyzeDocument(ctx, doc)
		}

		if err := s.finishCurrent(ctx, documentID); err != nil {
			return err
		}
	}
}

// RecoverStartup demotes records left running by a previous process back
// to queued. An in-flight job cannot have survived a restart, and leaving
// it running would wedge the state machine.
func (s *Service) RecoverStartup(ctx context.Context) error {
	recs, err := s.analyses.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.Status != domain.StatusRunning {
			continue
		}
		rec.Status = domain.StatusQueued
		if err := s.analyses.Put(ctx, rec); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.queue.Load(ctx)
	if err != nil {
		return err
	}
	if snap.Current == "" {
		return nil
	}
	// The interrupted job goes back to the front: never silently dropped,
	// never left stuck.
	snap.Pending = append([]string{snap.Current}, snap.Pending...)
	snap.Current = ""
	return s.queue.Save(ctx, snap)
}

// Invalidate resets the module profile so the next aggregation rebuilds
// it. The explicit manual escape hatch from terminal states.
func (s *Service) Invalidate(ctx context.Context, moduleID string) error {
	err := s.profiles.Invalidate(ctx, moduleID)
	if store.IsNotFound(err) {
		return nil
	}
	return err
}

// AggregateModule rebuilds the module profile from all done document
// analyses, skipping the work when the aggregate source hash is unchanged.
func (s *Service) AggregateModule(ctx context.Context, moduleID string) (*domain.ModuleProfileRecord, error) {
	recs, err := s.analyses.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	var docs []merge.DocAnalysis
	for _, rec := range recs {
		if rec.Status != domain.StatusDone {
			continue
		}
		payload, err := domain.DecodePayload(rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", rec.DocumentID, err)
		}
		docs = append(docs, merge.DocAnalysis{
			DocumentID:      rec.DocumentID,
			DocumentType:    rec.DocumentType,
			SourceHash:      rec.SourceHash,
			CoveragePercent: rec.CoveragePercent,
			Payload:         payload,
		})
	}

	newHash := merge.AggregateHash(docs)
	existing, err := s.profiles.Get(ctx, moduleID)
	if err == nil && existing.SourceHashAggregate == newHash && existing.Status == domain.StatusDone {
		return existing, nil
	}
	if err != nil && !store.IsNotFound(err) {
		return nil, err
	}

	profile := s.merger.AggregateModule(moduleID, docs)
	if err := s.profiles.Put(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// takeNext pops the queue head into Current.
func (s *Service) takeNext(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.queue.Load(ctx)
	if err != nil {
		return "", false, err
	}
	if len(snap.Pending) == 0 {
		return "", false, nil
	}
	documentID := snap.Pending[0]
	snap.Pending = snap.Pending[1:]
	snap.Current = documentID
	if err := s.queue.Save(ctx, snap); err != nil {
		return "", false, err
	}
	return documentID, true, nil
}

func (s *Service) finishCurrent(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, documentID)
	snap, err := s.queue.Load(ctx)
	if err != nil {
		return err
	}
	if snap.Current == documentID {
		snap.Current = ""
		return s.queue.Save(ctx, snap)
	}
	return nil
}

func (s *Service) lookupDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	s.mu.Lock()
	doc := s.docs[documentID]
	s.mu.Unlock()
	if doc != nil {
		return doc, nil
	}
	if s.source == nil {
		return nil, fmt.Errorf("document %s not available and no document source configured", documentID)
	}
	return s.source.Document(ctx, documentID)
}

func (s *Service) recordMissingDocument(ctx context.Context, documentID string, cause error) {
	rec, err := s.analyses.Get(ctx, documentID)
	if err != nil {
		return
	}
	rec.Status = domain.StatusError
	rec.ErrorMessage = fmt.Sprintf("document unavailable: %v", cause)
	_ = s.analyses.Put(ctx, rec)
}

// analyzeDocument runs the chunk → extract → merge pipeline for one
// document, persisting chunk-by-chunk progress. Chunks are processed
// strictly sequentially so progress is monotonic and the load on the
// generation backend stays bounded.
func (s *Service) analyzeDocument(ctx context.Context, doc *domain.Document) {
	start := s.now()
	sourceHash := SourceHash(doc)

	rec, err := s.analyses.Get(ctx, doc.DocumentID)
	if err != nil {
		if !store.IsNotFound(err) {
			return
		}
		rec = &domain.DocumentAnalysisRecord{
			ID:         uuid.NewString(),
			DocumentID: doc.DocumentID,
		}
	}

	// Blank documents are screened here rather than by the chunker, which
	// would hand back a single empty chunk.
	var chunks []domain.TextChunk
	if strings.TrimSpace(doc.Text) != "" {
		chunks = chunk.Split(doc.Text, s.cfg.MaxChunkChars, s.cfg.ChunkOverlap)
	}

	rec.ModuleID = doc.ModuleID
	rec.DocumentType = doc.DocumentType
	rec.SourceHash = sourceHash
	rec.AnalysisVersion = domain.AnalysisSchemaVersion
	rec.Status = domain.StatusRunning
	rec.ChunkCount = len(chunks)
	rec.ProcessedChunkCount = 0
	rec.CoveragePercent = 0
	rec.ErrorMessage = ""
	rec.Payload = nil
	if err := s.analyses.Put(ctx, rec); err != nil {
		return
	}

	results := make([]extract.ChunkResult, 0, len(chunks))
	succeeded := 0
	dropped := 0
	var failures []string

	for _, c := range chunks {
		res := s.extractor.AnalyzeChunk(ctx, c, doc.DocumentType, len(chunks))
		results = append(results, res)
		if res.Success {
			succeeded++
		} else {
			failures = append(failures, fmt.Sprintf("chunk %d: %s", res.ChunkIndex, res.Error))
		}
		dropped += res.DroppedItems

		rec.ProcessedChunkCount++
		if len(chunks) > 0 {
			rec.CoveragePercent = 100 * float64(succeeded) / float64(len(chunks))
		}
		if err := s.analyses.Put(ctx, rec); err != nil {
			return
		}
	}

	now := s.now().UTC()
	rec.LastAnalyzedAt = &now

	if len(chunks) == 0 {
		rec.Status = domain.StatusError
		rec.ErrorMessage = "document has no analyzable text"
	} else if succeeded == 0 {
		rec.Status = domain.StatusError
		rec.ErrorMessage = consolidateErrors(failures)
	} else {
		merged := s.merger.MergeChunks(results, doc.DocumentType)
		payload, err := domain.EncodePayload(&merged)
		if err != nil {
			rec.Status = domain.StatusError
			rec.ErrorMessage = err.Error()
		} else {
			rec.Status = domain.StatusDone
			rec.Payload = payload
			if len(failures) > 0 {
				rec.ErrorMessage = consolidateErrors(failures)
			}
		}
	}
	_ = s.analyses.Put(ctx, rec)

	s.observer.ObserveJob(JobEvent{
		DocumentID:      doc.DocumentID,
		ModuleID:        doc.ModuleID,
		Duration:        s.now().Sub(start),
		ChunkCount:      len(chunks),
		SucceededChunks: succeeded,
		DroppedItems:    dropped,
		Status:          string(rec.Status),
	})
}

func consolidateErrors(failures []string) string {
	const maxListed = 5
	if len(failures) > maxListed {
		omitted := len(failures) - maxListed
		failures = append(failures[:maxListed], fmt.Sprintf("(%d more)", omitted))
	}
	return strings.Join(failures, "; ")
}
