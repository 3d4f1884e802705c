package dedup

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/normalize"
)

// Method names the similarity backend that produced a check result.
type Method string

const (
	MethodHeuristic Method = "heuristic"
	MethodEmbedding Method = "embedding"
)

// ErrVectorLength indicates mismatched embedding dimensions: a caller bug,
// not a transient condition, so never retried.
var ErrVectorLength = errors.New("embedding vectors have different lengths")

// CheckResult is the outcome of a semantic duplicate check. "No duplicate
// found" is the success path, not an error.
type CheckResult struct {
	IsDuplicate    bool    `json:"isDuplicate"`
	Similarity     float64 `json:"similarity"`
	MatchingTaskID string  `json:"matchingTaskId,omitempty"`
	Method         Method  `json:"method"`
}

// ScoredTask is one entry of a top-K similarity ranking.
type ScoredTask struct {
	TaskID     string
	Similarity float64
}

// Embedder is the optional embedding capability. The generation client
// satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Config holds the similarity weighting and thresholds. These are
// empirically chosen and deliberately tunable, not invariants.
type Config struct {
	JaccardWeight  float64
	TrigramWeight  float64
	FourgramWeight float64
	// HeuristicThreshold is the duplicate cutoff for the blended score.
	HeuristicThreshold float64
	// EmbeddingThreshold is higher since embeddings capture paraphrase
	// more precisely; a lower cutoff would over-trigger.
	EmbeddingThreshold float64
	// StemLanguage is the snowball language for similarity tokens; empty
	// disables stemming.
	StemLanguage string
}

func DefaultConfig() Config {
	return Config{
		JaccardWeight:      0.3,
		TrigramWeight:      0.4,
		FourgramWeight:     0.3,
		HeuristicThreshold: 0.85,
		EmbeddingThreshold: 0.92,
		StemLanguage:       "german",
	}
}

// LoadConfig reads threshold overrides from the environment.
func LoadConfig() Config {
	cfg := DefaultConfig()
	applyFloatEnv(&cfg.HeuristicThreshold, "STUDYCORE_DEDUP_HEURISTIC_THRESHOLD")
	applyFloatEnv(&cfg.EmbeddingThreshold, "STUDYCORE_DEDUP_EMBEDDING_THRESHOLD")
	if v := os.Getenv("STUDYCORE_DEDUP_STEM_LANGUAGE"); v != "" {
		cfg.StemLanguage = v
	}
	return cfg
}

func applyFloatEnv(dst *float64, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
		*dst = f
	}
}

// SemanticChecker finds fuzzy duplicates in the task corpus.
type SemanticChecker struct {
	cfg      Config
	embedder Embedder // nil disables the embedding path
}

// NewSemanticChecker creates a checker. A nil embedder restricts it to the
// heuristic path.
func NewSemanticChecker(cfg Config, embedder Embedder) *SemanticChecker {
	return &SemanticChecker{cfg: cfg, embedder: embedder}
}

// FindDuplicate checks the candidate text against the existing tasks.
// threshold <= 0 selects the per-path default. When the embedding path is
// unavailable or fails, the checker falls back to the heuristic path
// transparently; the Method field reports which path ran.
func (c *SemanticChecker) FindDuplicate(ctx context.Context, candidate string, existing []*domain.Task, threshold float64) (CheckResult, error) {
	if c.embedder != nil {
		if res, err := c.findByEmbedding(ctx, candidate, existing, threshold); err == nil {
			return res, nil
		} else if errors.Is(err, ErrVectorLength) {
			return CheckResult{}, err
		}
		// transient embedding failure: fall through to the heuristic path
	}
	return c.findByHeuristic(candidate, existing, threshold), nil
}

func (c *SemanticChecker) findByHeuristic(candidate string, existing []*domain.Task, threshold float64) CheckResult {
	if threshold <= 0 {
		threshold = c.cfg.HeuristicThreshold
	}
	result := CheckResult{Method: MethodHeuristic}
	for _, task := range existing {
		sim := c.SoftSimilarity(candidate, taskText(task))
		if sim > result.Similarity {
			result.Similarity = sim
			result.MatchingTaskID = task.ID
		}
	}
	result.IsDuplicate = result.Similarity >= threshold
	if !result.IsDuplicate {
		result.MatchingTaskID = ""
	}
	return result
}

func (c *SemanticChecker) findByEmbedding(ctx context.Context, candidate string, existing []*domain.Task, threshold float64) (CheckResult, error) {
	if threshold <= 0 {
		threshold = c.cfg.EmbeddingThreshold
	}
	candVec, err := c.embedder.Embed(ctx, candidate)
	if err != nil {
		return CheckResult{}, err
	}

	result := CheckResult{Method: MethodEmbedding}
	for _, task := range existing {
		taskVec, err := c.embedder.Embed(ctx, taskText(task))
		if err != nil {
			return CheckResult{}, err
		}
		sim, err := Cosine(candVec, taskVec)
		if err != nil {
			return CheckResult{}, err
		}
		if sim > result.Similarity {
			result.Similarity = sim
			result.MatchingTaskID = task.ID
		}
	}
	result.IsDuplicate = result.Similarity >= threshold
	if !result.IsDuplicate {
		result.MatchingTaskID = ""
	}
	return result, nil
}

// TopKSimilar ranks existing tasks by heuristic similarity and returns the
// top k, optionally pre-filtered to one topic. Intended as an avoid-list
// for generation prompts, not as a dedup gate.
func (c *SemanticChecker) TopKSimilar(candidate string, existing []*domain.Task, k int, topicID string) []ScoredTask {
	if k <= 0 {
		return nil
	}
	scored := make([]ScoredTask, 0, len(existing))
	for _, task := range existing {
		if topicID != "" && task.TopicID != topicID {
			continue
		}
		scored = append(scored, ScoredTask{
			TaskID:     task.ID,
			Similarity: c.SoftSimilarity(candidate, taskText(task)),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].TaskID < scored[j].TaskID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// SoftSimilarity blends token Jaccard with character tri- and four-gram
// overlap. Word-order changes leave Jaccard near 1.0 but depress the
// n-gram components, which is what separates reorderings from true
// duplicates.
func (c *SemanticChecker) SoftSimilarity(a, b string) float64 {
	jac := jaccard(
		normalize.TokenSet(normalize.SimilarityTokens(a, c.cfg.StemLanguage)),
		normalize.TokenSet(normalize.SimilarityTokens(b, c.cfg.StemLanguage)),
	)
	tri := jaccard(normalize.CharNGrams(a, 3), normalize.CharNGrams(b, 3))
	four := jaccard(normalize.CharNGrams(a, 4), normalize.CharNGrams(b, 4))
	return c.cfg.JaccardWeight*jac + c.cfg.TrigramWeight*tri + c.cfg.FourgramWeight*four
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths
// are a caller bug and yield ErrVectorLength.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrVectorLength, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func taskText(t *domain.Task) string {
	if t.Solution == "" {
		return t.Question
	}
	return t.Question + " " + t.Solution
}
