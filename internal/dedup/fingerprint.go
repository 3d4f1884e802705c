// Package dedup detects duplicate practice tasks with two independent
// strategies: exact fingerprints over normalized content and fuzzy
// token/n-gram (or embedding) similarity.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/normalize"
)

// HashAlgorithm selects the fingerprint hash. The two algorithms produce
// different fingerprint spaces and must never be mixed within one
// deployment.
type HashAlgorithm string

const (
	// HashSHA256 is the default cryptographic fingerprint.
	HashSHA256 HashAlgorithm = "sha256"
	// HashFNV is a non-cryptographic fallback for environments without a
	// secure hash primitive, at a higher but still low collision risk.
	HashFNV HashAlgorithm = "fnv64a"
)

// TaskFingerprintData is the deterministic fingerprint of a task: the same
// normalized (question, solution, tags) triple always yields the same
// fingerprint.
type TaskFingerprintData struct {
	Fingerprint        string   `json:"fingerprint"`
	NormalizedQuestion string   `json:"normalizedQuestion"`
	NormalizedSolution string   `json:"normalizedSolution"`
	NormalizedTags     []string `json:"normalizedTags"`
}

// Fingerprinter computes exact-duplicate fingerprints.
type Fingerprinter struct {
	alg HashAlgorithm
}

func NewFingerprinter(alg HashAlgorithm) *Fingerprinter {
	if alg == "" {
		alg = HashSHA256
	}
	return &Fingerprinter{alg: alg}
}

// Fingerprint normalizes the task content and hashes
// normalizedQuestion + "|" + normalizedSolution + "|" + sortedTags.
func (f *Fingerprinter) Fingerprint(question, solution string, tags []string) TaskFingerprintData {
	data := TaskFingerprintData{
		NormalizedQuestion: normalize.Text(question),
		NormalizedSolution: normalize.Text(solution),
		NormalizedTags:     normalizeTags(tags),
	}
	material := data.NormalizedQuestion + "|" + data.NormalizedSolution + "|" + strings.Join(data.NormalizedTags, ",")
	data.Fingerprint = f.hash(material)
	return data
}

func (f *Fingerprinter) hash(s string) string {
	if f.alg == HashFNV {
		h := fnv.New64a()
		h.Write([]byte(s))
		return fmt.Sprintf("fnv:%016x", h.Sum64())
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// normalizeTags lowercases, trims, deduplicates, and sorts tags so tag
// order never affects the fingerprint.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FingerprintIndex is an O(1) exact-duplicate lookup built from the
// existing task corpus.
type FingerprintIndex map[string]string

// BuildFingerprintIndex fingerprints every task. Tasks that already carry
// a fingerprint are trusted as-is; they were produced by the same
// deployment-wide algorithm.
func BuildFingerprintIndex(f *Fingerprinter, tasks []*domain.Task) FingerprintIndex {
	idx := make(FingerprintIndex, len(tasks))
	for _, t := range tasks {
		fp := t.Fingerprint
		if fp == "" {
			fp = f.Fingerprint(t.Question, t.Solution, t.Tags).Fingerprint
		}
		idx[fp] = t.ID
	}
	return idx
}

// Lookup returns the task id holding the fingerprint, if any.
func (idx FingerprintIndex) Lookup(fingerprint string) (taskID string, found bool) {
	taskID, found = idx[fingerprint]
	return taskID, found
}
