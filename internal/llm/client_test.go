package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureObserver struct {
	events []CallEvent
}

func (o *captureObserver) OnCallComplete(e CallEvent) { o.events = append(o.events, e) }

func fastConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.MaxRetries = 2
	cfg.BackoffBaseMs = 1
	cfg.BackoffMaxMs = 2
	cfg.CooldownMs = 0
	return cfg
}

func TestOllamaClient_GenerateSuccess(t *testing.T) {
	var gotBody ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Model: "test-model", Response: `{"ok":true}`})
	}))
	defer srv.Close()

	obs := &captureObserver{}
	client := NewOllamaClient(fastConfig(srv.URL), obs)

	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:       TaskExtract,
		UserPrompt: "extract",
		JSONMode:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Text)
	assert.Equal(t, "test-model", resp.Model)
	assert.Equal(t, "json", gotBody.Format, "JSON mode must reach the backend")

	require.Len(t, obs.events, 1)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, 1, obs.events[0].Attempts)
}

func TestOllamaClient_RetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Model: "m", Response: "ok"})
	}))
	defer srv.Close()

	obs := &captureObserver{}
	client := NewOllamaClient(fastConfig(srv.URL), obs)

	resp, err := client.Generate(context.Background(), GenerateRequest{Task: TaskExtract, UserPrompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, obs.events, 1)
	assert.Equal(t, 3, obs.events[0].Attempts)
}

func TestOllamaClient_RateLimitKindSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOllamaClient(fastConfig(srv.URL), nil)

	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskExtract, UserPrompt: "p"})
	require.Error(t, err)
	assert.Equal(t, KindRateLimited, KindOf(err))
	assert.True(t, Retryable(err))
}

func TestOllamaClient_NonRetryableStatusStopsEarly(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewOllamaClient(fastConfig(srv.URL), nil)

	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskExtract, UserPrompt: "p"})
	require.Error(t, err)
	assert.Equal(t, KindOther, KindOf(err))
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestOllamaClient_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float64{0.1, 0.2}})
	}))
	defer srv.Close()

	client := NewOllamaClient(fastConfig(srv.URL), nil)

	vec, err := client.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, vec)
}

func TestOllamaClient_EmbedWithoutModelConfigured(t *testing.T) {
	cfg := fastConfig("http://unused")
	cfg.EmbedModel = ""
	client := NewOllamaClient(cfg, nil)

	_, err := client.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, KindOther, KindOf(err))
}

func TestOllamaClient_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
	}))
	client := NewOllamaClient(fastConfig(srv.URL), nil)
	assert.True(t, client.Available(context.Background()))

	srv.Close()
	assert.False(t, client.Available(context.Background()))
}

func TestBackoff_ExponentialWithCap(t *testing.T) {
	c := &ollamaClient{cfg: Config{BackoffBaseMs: 100, BackoffMaxMs: 400}}

	for attempt := 0; attempt < 6; attempt++ {
		d := c.backoff(attempt)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond, "attempt %d keeps at least half the base delay", attempt)
		assert.LessOrEqual(t, d, 400*time.Millisecond, "attempt %d respects the cap", attempt)
	}
}

func TestBackoff_LargeAttemptSaturatesAtCap(t *testing.T) {
	// Retry counts come from the environment; attempt numbers past the
	// shift width must saturate instead of wrapping negative.
	c := &ollamaClient{cfg: Config{BackoffBaseMs: 500, BackoffMaxMs: 8000}}
	for _, attempt := range []int{32, 63, 500} {
		d := c.backoff(attempt)
		assert.Greater(t, d, time.Duration(0), "attempt %d", attempt)
		assert.LessOrEqual(t, d, 8*time.Second, "attempt %d", attempt)
	}

	uncapped := &ollamaClient{cfg: Config{BackoffBaseMs: 500}}
	d := uncapped.backoff(500)
	assert.Greater(t, d, time.Duration(0))
	assert.LessOrEqual(t, d, 60*time.Second, "a missing cap falls back to the default ceiling")
}
