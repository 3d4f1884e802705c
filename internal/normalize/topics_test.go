package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_SpellingVariantsCollapse(t *testing.T) {
	c := NewTopicCanonicalizer(DefaultAliases())

	variants := []string{
		"KV-Diagramm",
		"kv - diagramm",
		"Karnaugh-Veitch",
		"KV Diagramm",
		"kv diagramme",
	}
	for _, v := range variants {
		key, display, ok := c.Canonicalize(v)
		require.True(t, ok, "variant %q should canonicalize", v)
		assert.Equal(t, "kv-diagramm", key, "variant %q", v)
		assert.Equal(t, "KV-Diagramm", display, "variant %q", v)
	}
}

func TestCanonicalize_UmlautVariants(t *testing.T) {
	c := NewTopicCanonicalizer(DefaultAliases())

	key1, _, ok1 := c.Canonicalize("Komplexität")
	key2, _, ok2 := c.Canonicalize("Komplexitaet")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, key1, key2)
}

func TestCanonicalize_UnknownTopicGetsFallbackKey(t *testing.T) {
	c := NewTopicCanonicalizer(DefaultAliases())

	key, display, ok := c.Canonicalize("Relationale Datenbanken")
	require.True(t, ok)
	assert.Equal(t, "relationale-datenbanken", key)
	assert.Equal(t, "Relationale Datenbanken", display)
}

func TestCanonicalize_NoiseRejected(t *testing.T) {
	c := NewTopicCanonicalizer(DefaultAliases())

	for _, raw := range []string{"Einleitung", "3.1", "Kapitel 4", "Übung", "ab", "  "} {
		_, _, ok := c.Canonicalize(raw)
		assert.False(t, ok, "noise %q should be rejected", raw)
	}
}

func TestCanonicalize_ToleranceDoesNotCollapseUnrelated(t *testing.T) {
	c := NewTopicCanonicalizer(DefaultAliases())

	key, _, ok := c.Canonicalize("Graphentheorie")
	require.True(t, ok)
	assert.Equal(t, "graphentheorie", key, "unrelated topic must not match an alias")
}

func TestIsNoiseTopic(t *testing.T) {
	assert.True(t, IsNoiseTopic("42"))
	assert.True(t, IsNoiseTopic("Seite 12"))
	assert.True(t, IsNoiseTopic("Zusammenfassung"))
	assert.False(t, IsNoiseTopic("Boolesche Algebra"))
	assert.False(t, IsNoiseTopic("Zusammenfassung der Algebra"))
}
