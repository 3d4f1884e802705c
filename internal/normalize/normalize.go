// Package normalize provides the pure text routines shared by the
// extraction, dedup, and topic layers: normalization, tokenization,
// n-grams, and content hashing. Nothing in here holds state.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

var (
	wordRe       = regexp.MustCompile(`[\p{L}\p{N}]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// umlautReplacer transliterates German umlauts before ASCII folding so
// "Übung" and "Uebung" normalize identically.
var umlautReplacer = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
)

// FoldUmlauts transliterates German umlauts and sharp s.
func FoldUmlauts(s string) string {
	return umlautReplacer.Replace(s)
}

// Text lowercases, transliterates umlauts, strips punctuation and symbols,
// collapses whitespace, and trims. This is the normalization used for
// fingerprinting and canonical keys.
func Text(s string) string {
	s = strings.ToLower(FoldUmlauts(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Punctuation and symbols become separators so "2+2" and
			// "2 + 2" tokenize the same way.
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(b.String(), " "))
}

// Words splits s into lowercase word tokens of at least minLen runes.
func Words(s string, minLen int) []string {
	raw := wordRe.FindAllString(strings.ToLower(s), -1)
	tokens := make([]string, 0, len(raw))
	for _, w := range raw {
		if len([]rune(w)) >= minLen {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// EvidenceTokens tokenizes text for evidence matching: lowercase words
// longer than two characters.
func EvidenceTokens(s string) []string {
	return Words(s, 3)
}

// SimilarityTokens tokenizes text for semantic similarity: lowercase words
// longer than one character, stemmed where the stemmer succeeds. Stemming
// collapses inflected forms ("Diagramme"/"Diagramm") without changing the
// token count.
func SimilarityTokens(s string, language string) []string {
	tokens := Words(FoldUmlauts(s), 2)
	if language == "" {
		return tokens
	}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		stemmed, err := snowball.Stem(t, language, false)
		if err != nil || stemmed == "" {
			out = append(out, t)
			continue
		}
		out = append(out, stemmed)
	}
	return out
}

// TokenSet builds a membership set from tokens.
func TokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// CharNGrams returns the set of character n-grams of the normalized text.
func CharNGrams(s string, n int) map[string]struct{} {
	runes := []rune(Text(s))
	set := make(map[string]struct{})
	if len(runes) < n {
		if len(runes) > 0 {
			set[string(runes)] = struct{}{}
		}
		return set
	}
	for i := 0; i+n <= len(runes); i++ {
		set[string(runes[i:i+n])] = struct{}{}
	}
	return set
}

// ContentHash returns the hex SHA-256 of the raw text. Used as the source
// hash for cache invalidation.
func ContentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
