package normalize

import (
	"regexp"
	"strings"
)

// aliasLengthTolerance is the maximum length difference (in characters of
// the folded key) at which a containment match between input and alias is
// still accepted. Keeps "kv diagramm" matching "kv-diagramme" without
// collapsing unrelated topics.
const aliasLengthTolerance = 4

// minTopicLength rejects raw topic strings too short to be a subject.
const minTopicLength = 3

var (
	bareNumberRe  = regexp.MustCompile(`^\d+(\.\d+)*$`)
	sectionRefRe  = regexp.MustCompile(`^(seite|kapitel|abschnitt|page|chapter|section)\s*\d*$`)
)

// noiseWords are generic section headers that must never become topics.
var noiseWords = map[string]bool{
	"einleitung": true, "einfuehrung": true, "inhalt": true,
	"inhaltsverzeichnis": true, "uebung": true, "uebungen": true,
	"aufgabe": true, "aufgaben": true, "loesung": true, "loesungen": true,
	"literatur": true, "anhang": true, "zusammenfassung": true,
	"introduction": true, "contents": true, "exercise": true,
	"exercises": true, "solution": true, "solutions": true,
	"summary": true, "appendix": true, "overview": true,
}

// TopicCanonicalizer maps raw topic strings to canonical keys via an alias
// table with an ASCII-fold fallback and a noise filter.
type TopicCanonicalizer struct {
	// display maps canonical key to the preferred display form.
	display map[string]string
	// folded maps each folded alias form to its canonical key.
	folded map[string]string
}

// NewTopicCanonicalizer builds a canonicalizer from an alias table mapping
// canonical key to known spelling variants. The first variant is the
// preferred display form.
func NewTopicCanonicalizer(aliases map[string][]string) *TopicCanonicalizer {
	c := &TopicCanonicalizer{
		display: make(map[string]string, len(aliases)),
		folded:  make(map[string]string),
	}
	for key, variants := range aliases {
		if len(variants) == 0 {
			continue
		}
		c.display[key] = variants[0]
		c.folded[foldKey(key)] = key
		for _, v := range variants {
			c.folded[foldKey(v)] = key
		}
	}
	return c
}

// DefaultAliases returns the built-in alias table for common topic
// spellings. Callers merge module-specific aliases on top.
func DefaultAliases() map[string][]string {
	return map[string][]string{
		"kv-diagramm": {
			"KV-Diagramm", "Karnaugh-Veitch", "Karnaugh-Veitch-Diagramm",
			"KV Diagramm", "Karnaugh Map",
		},
		"boolesche-algebra": {
			"Boolesche Algebra", "Boolsche Algebra", "Boolean Algebra",
		},
		"endlicher-automat": {
			"Endlicher Automat", "Endliche Automaten", "Finite State Machine",
			"Zustandsautomat",
		},
		"zahlensysteme": {
			"Zahlensysteme", "Zahlendarstellung", "Number Systems",
			"Binärdarstellung",
		},
		"komplexitaet": {
			"Komplexität", "Komplexitätsanalyse", "Laufzeitanalyse",
			"Complexity Analysis",
		},
	}
}

// Canonicalize maps a raw topic string to (canonicalKey, displayName, ok).
// Noise strings return ok=false and must never become Topics.
func (c *TopicCanonicalizer) Canonicalize(raw string) (key string, display string, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if IsNoiseTopic(trimmed) {
		return "", "", false
	}

	folded := foldKey(trimmed)
	if folded == "" {
		return "", "", false
	}

	if key, ok := c.folded[folded]; ok {
		return key, c.display[key], true
	}

	// Containment with a small length tolerance covers minor wording
	// differences ("kv diagramme" vs "kv-diagramm") without an explicit
	// alias entry.
	for aliasFolded, key := range c.folded {
		if !withinTolerance(len(folded), len(aliasFolded)) {
			continue
		}
		if strings.Contains(folded, aliasFolded) || strings.Contains(aliasFolded, folded) {
			return key, c.display[key], true
		}
	}

	// Fallback: the normalized form itself becomes the canonical key and
	// the trimmed input the display form.
	return fallbackKey(trimmed), trimmed, true
}

// IsNoiseTopic reports whether a raw topic string matches the noise list:
// generic section words, bare page/chapter numbers, or below minimum
// length.
func IsNoiseTopic(raw string) bool {
	norm := Text(raw)
	if len(norm) < minTopicLength {
		return true
	}
	if bareNumberRe.MatchString(norm) || sectionRefRe.MatchString(norm) {
		return true
	}
	words := strings.Fields(norm)
	if len(words) == 1 && noiseWords[words[0]] {
		return true
	}
	return false
}

// foldKey reduces a topic string to its match form: lowercase, umlauts
// folded, everything but letters and digits removed.
func foldKey(s string) string {
	norm := Text(s)
	return strings.ReplaceAll(norm, " ", "")
}

// fallbackKey is the canonical key for topics with no alias entry:
// normalized text with spaces as hyphens.
func fallbackKey(s string) string {
	return strings.ReplaceAll(Text(s), " ", "-")
}

func withinTolerance(a, b int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= aliasLengthTolerance
}
