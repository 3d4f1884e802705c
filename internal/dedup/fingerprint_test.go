package dedup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

func TestFingerprint_NormalizationInvariance(t *testing.T) {
	f := NewFingerprinter(HashSHA256)

	a := f.Fingerprint("Was ist  2+2?", "4", []string{"mathe"})
	b := f.Fingerprint("was ist 2 + 2", "4 ", []string{"Mathe"})

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.Equal(t, "was ist 2 2", a.NormalizedQuestion)
	assert.Equal(t, []string{"mathe"}, a.NormalizedTags)
}

func TestFingerprint_TagOrderAndDuplicatesIrrelevant(t *testing.T) {
	f := NewFingerprinter(HashSHA256)

	a := f.Fingerprint("q", "s", []string{"b", "a", "a"})
	b := f.Fingerprint("q", "s", []string{"A", "B"})
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.Equal(t, []string{"a", "b"}, a.NormalizedTags)
}

func TestFingerprint_DifferentContentDiffers(t *testing.T) {
	f := NewFingerprinter(HashSHA256)

	a := f.Fingerprint("Was ist 2+2?", "4", nil)
	b := f.Fingerprint("Was ist 2+3?", "5", nil)
	assert.NotEqual(t, a.Fingerprint, b.Fingerprint)
}

func TestFingerprint_AlgorithmsProduceDistinctSpaces(t *testing.T) {
	sha := NewFingerprinter(HashSHA256)
	fnv := NewFingerprinter(HashFNV)

	a := sha.Fingerprint("q", "s", nil)
	b := fnv.Fingerprint("q", "s", nil)

	assert.Len(t, a.Fingerprint, 64)
	assert.True(t, strings.HasPrefix(b.Fingerprint, "fnv:"))
	assert.NotEqual(t, a.Fingerprint, b.Fingerprint)
}

func TestFingerprint_EmptyAlgorithmDefaultsToSHA256(t *testing.T) {
	def := NewFingerprinter("")
	sha := NewFingerprinter(HashSHA256)
	assert.Equal(t, sha.Fingerprint("q", "s", nil).Fingerprint, def.Fingerprint("q", "s", nil).Fingerprint)
}

func TestFingerprintIndex_LookupAndTrustExisting(t *testing.T) {
	f := NewFingerprinter(HashSHA256)

	computed := f.Fingerprint("Was ist ein Automat?", "Eine Zustandsmaschine", nil)
	tasks := []*domain.Task{
		{ID: "t1", Question: "Was ist ein Automat?", Solution: "Eine Zustandsmaschine"},
		{ID: "t2", Question: "ignored", Solution: "ignored", Fingerprint: "precomputed-fp"},
	}

	idx := BuildFingerprintIndex(f, tasks)

	id, found := idx.Lookup(computed.Fingerprint)
	require.True(t, found)
	assert.Equal(t, "t1", id)

	id, found = idx.Lookup("precomputed-fp")
	require.True(t, found, "existing fingerprints are trusted as-is")
	assert.Equal(t, "t2", id)

	_, found = idx.Lookup("unknown")
	assert.False(t, found)
}
