package llm

import (
	"os"
	"strconv"
)

// TaskType identifies the kind of generation task being performed.
type TaskType string

const (
	TaskExtract TaskType = "extract"
	TaskEmbed   TaskType = "embed"
)

// TaskConfig holds per-task generation parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Config holds all configuration for the generation client.
type Config struct {
	Endpoint      string
	Model         string
	EmbedModel    string
	TimeoutMs     int
	MaxRetries    int
	BackoffBaseMs int
	BackoffMaxMs  int
	CooldownMs    int // applied after a rate-limit signal
	LogCalls      bool
	Tasks         map[TaskType]TaskConfig
}

// DefaultConfig returns a Config with sensible defaults for a local Ollama
// instance.
func DefaultConfig() Config {
	return Config{
		Endpoint:      "http://localhost:11434",
		Model:         "llama3.2",
		EmbedModel:    "nomic-embed-text",
		TimeoutMs:     60000,
		MaxRetries:    2,
		BackoffBaseMs: 500,
		BackoffMaxMs:  8000,
		CooldownMs:    15000,
		LogCalls:      false,
		Tasks: map[TaskType]TaskConfig{
			TaskExtract: {Temperature: 0.1, MaxTokens: 2048, TimeoutMs: 60000},
			TaskEmbed:   {TimeoutMs: 15000},
		},
	}
}

// LoadConfig reads generation configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("STUDYCORE_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("STUDYCORE_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("STUDYCORE_LLM_EMBED_MODEL"); v != "" {
		cfg.EmbedModel = v
	}
	if v := os.Getenv("STUDYCORE_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	applyIntEnv(&cfg.TimeoutMs, "STUDYCORE_LLM_TIMEOUT_MS")
	applyIntEnv(&cfg.MaxRetries, "STUDYCORE_LLM_MAX_RETRIES")
	applyIntEnv(&cfg.BackoffBaseMs, "STUDYCORE_LLM_BACKOFF_BASE_MS")
	applyIntEnv(&cfg.BackoffMaxMs, "STUDYCORE_LLM_BACKOFF_MAX_MS")
	applyIntEnv(&cfg.CooldownMs, "STUDYCORE_LLM_COOLDOWN_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyIntEnv(dst *int, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		*dst = n
	}
}
