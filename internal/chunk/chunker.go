// Package chunk splits documents into overlapping, sentence-aligned text
// windows for per-chunk extraction.
package chunk

import (
	"unicode"
	"unicode/utf8"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

const (
	// DefaultMaxChars is the default window size in bytes.
	DefaultMaxChars = 6000
	// DefaultOverlap is the default overlap between consecutive windows.
	DefaultOverlap = 400
	// boundarySearchFraction is the trailing portion of a window searched
	// for a sentence boundary.
	boundarySearchFraction = 0.2
)

// Split cuts text into chunks of at most maxChars bytes. Text that fits in
// one window yields exactly one chunk, even when empty; screening blank
// input is the caller's concern. Windows before the true end of text are
// pulled back to the last sentence boundary found in the trailing fifth of
// the window. Consecutive chunks overlap by overlap bytes unless that would
// stall forward progress.
func Split(text string, maxChars, overlap int) []domain.TextChunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}

	if len(text) <= maxChars {
		return []domain.TextChunk{{Index: 0, StartPos: 0, EndPos: len(text), Text: text}}
	}

	var chunks []domain.TextChunk
	start := 0
	for start < len(text) {
		end := start + maxChars
		if end >= len(text) {
			end = len(text)
		} else if boundary := sentenceBoundary(text, start, end); boundary > start {
			end = boundary
		} else {
			// No boundary in range; pull the raw cut back so it never lands
			// inside a multi-byte rune.
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				// Window narrower than one rune; take the raw cut rather
				// than emit an empty chunk and stall.
				end = start + maxChars
			}
		}

		chunks = append(chunks, domain.TextChunk{
			Index:    len(chunks),
			StartPos: start,
			EndPos:   end,
			Text:     text[start:end],
		})

		if end >= len(text) {
			break
		}

		next := end - overlap
		for next > start && next < end && !utf8.RuneStart(text[next]) {
			next++
		}
		if next <= start {
			// Overlap would not advance past the previous start; drop it
			// for this step to guarantee termination.
			next = end
		}
		start = next
	}
	return chunks
}

// sentenceBoundary searches the last fifth of the window [start,end) for a
// sentence-ending punctuation mark followed by whitespace and an uppercase
// letter, and returns the position just after that whitespace. Returns -1
// when no boundary is found.
func sentenceBoundary(text string, start, end int) int {
	searchFrom := end - int(float64(end-start)*boundarySearchFraction)
	if searchFrom < start {
		searchFrom = start
	}

	for i := end - 1; i > searchFrom; i-- {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		j := i + 1
		if j >= end || !isSpaceByte(text[j]) {
			continue
		}
		for j < end && isSpaceByte(text[j]) {
			j++
		}
		if j >= end {
			continue
		}
		r, _ := utf8.DecodeRuneInString(text[j:])
		if unicode.IsUpper(r) {
			return j
		}
	}
	return -1
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}
