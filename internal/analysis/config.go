package analysis

import (
	"os"
	"strconv"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/chunk"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/extract"
)

// Config holds pipeline tuning for the analysis service.
type Config struct {
	MaxChunkChars     int
	ChunkOverlap      int
	EvidenceThreshold float64
}

func DefaultConfig() Config {
	return Config{
		MaxChunkChars:     chunk.DefaultMaxChars,
		ChunkOverlap:      chunk.DefaultOverlap,
		EvidenceThreshold: extract.DefaultEvidenceThreshold,
	}
}

// LoadConfig reads pipeline configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("STUDYCORE_CHUNK_MAX_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxChunkChars = n
		}
	}
	if v := os.Getenv("STUDYCORE_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ChunkOverlap = n
		}
	}
	if v := os.Getenv("STUDYCORE_EVIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			cfg.EvidenceThreshold = f
		}
	}
	return cfg
}
