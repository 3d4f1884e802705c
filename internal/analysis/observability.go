package analysis

import (
	"io"
	"log/slog"
	"time"
)

// JobEvent captures lightweight execution telemetry for one analysis job.
type JobEvent struct {
	DocumentID      string
	ModuleID        string
	Duration        time.Duration
	ChunkCount      int
	SucceededChunks int
	DroppedItems    int
	Status          string
	Err             error
}

// Observer receives analysis job events.
type Observer interface {
	ObserveJob(event JobEvent)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) ObserveJob(JobEvent) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes analysis job events to the provided writer.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &logObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logObserver) ObserveJob(event JobEvent) {
	attrs := []any{
		"document_id", event.DocumentID,
		"module_id", event.ModuleID,
		"duration_ms", event.Duration.Milliseconds(),
		"chunks", event.ChunkCount,
		"succeeded_chunks", event.SucceededChunks,
		"dropped_items", event.DroppedItems,
		"status", event.Status,
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.Error("analysis_job", attrs...)
		return
	}
	o.logger.Info("analysis_job", attrs...)
}
