package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"
)

// GenerateRequest holds the parameters for a text-generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	JSONMode     bool     // bias the backend toward parseable JSON output
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// GenerateResponse holds the result of a text-generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// TextGenerationService provides access to the external model backend for
// text generation and embeddings.
type TextGenerationService interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Embed returns a dense vector for the given text. Implementations may
	// return a KindOther ServiceError when no embedding model is configured.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Available checks whether the backend is reachable.
	Available(ctx context.Context) bool
}

// ollamaClient implements TextGenerationService using the Ollama HTTP API.
type ollamaClient struct {
	cfg      Config
	http     *http.Client
	observer Observer

	mu            sync.Mutex
	cooldownUntil time.Time
}

// NewOllamaClient creates a TextGenerationService that talks to a local
// Ollama instance.
func NewOllamaClient(cfg Config, observer Observer) TextGenerationService {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &ollamaClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// ollamaGenerateRequest is the JSON body sent to POST /api/generate.
type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	System  string        `json:"system,omitempty"`
	Prompt  string        `json:"prompt"`
	Format  string        `json:"format,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (c *ollamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	taskCfg := c.cfg.Tasks[req.Task]
	temp := taskCfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := taskCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}

	timeoutMs := c.cfg.TaskTimeout(req.Task)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	body := ollamaGenerateRequest{
		Model:  c.cfg.Model,
		System: req.SystemPrompt,
		Prompt: req.UserPrompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: temp,
			NumPredict:  maxTok,
		},
	}
	if req.JSONMode {
		body.Format = "json"
	}

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		if err := c.awaitCooldown(ctx); err != nil {
			lastErr = err
			break
		}

		resp, err := c.doGenerate(ctx, body)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(CallEvent{
				Task:      req.Task,
				Model:     c.cfg.Model,
				LatencyMs: latency,
				Attempts:  i + 1,
				Success:   true,
			})
			return &GenerateResponse{
				Text:      resp.Response,
				Model:     resp.Model,
				LatencyMs: latency,
			}, nil
		}
		lastErr = err

		if KindOf(err) == KindRateLimited {
			c.startCooldown()
		}
		if ctx.Err() != nil || !Retryable(err) {
			break
		}
		if i < attempts-1 {
			if err := sleepContext(ctx, c.backoff(i)); err != nil {
				break
			}
		}
	}

	latency := time.Since(start).Milliseconds()
	finalErr := c.finalError(ctx, lastErr)
	c.observer.OnCallComplete(CallEvent{
		Task:      req.Task,
		Model:     c.cfg.Model,
		LatencyMs: latency,
		Attempts:  attempts,
		Success:   false,
		ErrorKind: string(KindOf(finalErr)),
	})
	return nil, finalErr
}

func (c *ollamaClient) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.cfg.EmbedModel == "" {
		return nil, newServiceError(KindOther, "no embedding model configured", nil)
	}

	timeoutMs := c.cfg.TaskTimeout(TaskEmbed)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	data, err := json.Marshal(ollamaEmbedRequest{Model: c.cfg.EmbedModel, Prompt: text})
	if err != nil {
		return nil, newServiceError(KindOther, "marshaling embed request", err)
	}

	respBody, err := c.post(ctx, "/api/embeddings", data)
	if err != nil {
		return nil, err
	}

	var resp ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, newServiceError(KindInvalidOutput, "decoding embed response", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, newServiceError(KindInvalidOutput, "empty embedding", nil)
	}
	return resp.Embedding, nil
}

func (c *ollamaClient) doGenerate(ctx context.Context, body ollamaGenerateRequest) (*ollamaGenerateResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, newServiceError(KindOther, "marshaling generate request", err)
	}

	respBody, err := c.post(ctx, "/api/generate", data)
	if err != nil {
		return nil, err
	}

	var resp ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, newServiceError(KindInvalidOutput, "decoding generate response", err)
	}
	return &resp, nil
}

func (c *ollamaClient) post(ctx context.Context, path string, data []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+path, bytes.NewReader(data))
	if err != nil {
		return nil, newServiceError(KindOther, "creating request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, newServiceError(KindTransport, "reading response", err)
	}

	switch {
	case httpResp.StatusCode == http.StatusOK:
		return respBody, nil
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, newServiceError(KindRateLimited, "backend rate limited", nil)
	case httpResp.StatusCode >= 500:
		return nil, newServiceError(KindTransport,
			fmt.Sprintf("backend returned status %d", httpResp.StatusCode), nil)
	default:
		return nil, newServiceError(KindOther,
			fmt.Sprintf("backend returned status %d: %s", httpResp.StatusCode, truncate(string(respBody), 200)), nil)
	}
}

func (c *ollamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// backoff returns the delay before retry attempt+1: exponential with full
// jitter, capped at BackoffMaxMs.
func (c *ollamaClient) backoff(attempt int) time.Duration {
	base := c.cfg.BackoffBaseMs
	if base <= 0 {
		base = 500
	}
	max := c.cfg.BackoffMaxMs
	if max <= 0 {
		max = 60_000
	}
	// Doubling step by step saturates at the cap instead of overflowing
	// when the configured retry count is large.
	ms := base
	for i := 0; i < attempt && ms < max; i++ {
		ms <<= 1
	}
	if ms > max {
		ms = max
	}
	jittered := ms/2 + rand.Intn(ms/2+1)
	return time.Duration(jittered) * time.Millisecond
}

func (c *ollamaClient) startCooldown() {
	if c.cfg.CooldownMs <= 0 {
		return
	}
	c.mu.Lock()
	c.cooldownUntil = time.Now().Add(time.Duration(c.cfg.CooldownMs) * time.Millisecond)
	c.mu.Unlock()
}

// awaitCooldown blocks until any active rate-limit cooldown has elapsed.
func (c *ollamaClient) awaitCooldown(ctx context.Context) error {
	c.mu.Lock()
	until := c.cooldownUntil
	c.mu.Unlock()

	wait := time.Until(until)
	if wait <= 0 {
		return nil
	}
	return sleepContext(ctx, wait)
}

func (c *ollamaClient) finalError(ctx context.Context, lastErr error) error {
	if ctx.Err() != nil {
		return newServiceError(KindTimeout, "generation timed out", ctx.Err())
	}
	var se *ServiceError
	if errors.As(lastErr, &se) {
		if Retryable(lastErr) {
			return newServiceError(se.Kind, "retry attempts exhausted", lastErr)
		}
		return lastErr
	}
	return newServiceError(KindOther, "generation failed", lastErr)
}

func classifyTransportError(err error) *ServiceError {
	if errors.Is(err, context.DeadlineExceeded) {
		return newServiceError(KindTimeout, "request timed out", err)
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return newServiceError(KindTransport, "backend unreachable", err)
	}
	return newServiceError(KindTransport, "request failed", err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
