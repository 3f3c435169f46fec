package text

import (
	"strings"
)

// charsPerToken is the fixed accounting ratio between characters and the
// approximate token unit used by Chunk's size parameters. Changing it changes
// chunk-size semantics everywhere (ingestion and retrieval expectations), so
// it lives in exactly one place.
const charsPerToken = 4

const sentenceDelimiter = ". "

// Chunk splits text into overlapping chunks bounded by an approximate token
// budget. targetSize and overlapSize are expressed in tokens, approximated as
// characters/4. Boundaries are sentence-like: the text is split on the
// literal ". " delimiter, a heuristic, not true sentence detection. A single
// sentence longer than the whole budget is still emitted whole; the budget
// never truncates mid-sentence.
//
// Each chunk after the first is seeded with the trailing sentences of its
// predecessor, walking backward until the next sentence would exceed the
// overlap budget. Overlap is capped below targetSize so every chunk carries
// at least some new content and the walk always terminates.
func Chunk(text string, targetSize, overlapSize int) []string {
	if targetSize <= 0 {
		return nil
	}
	// Progress guard: an overlap that covers the full target would carry a
	// chunk's entire content into its successor forever.
	if overlapSize >= targetSize {
		overlapSize = targetSize - 1
	}

	maxChars := targetSize * charsPerToken
	overlapChars := overlapSize * charsPerToken

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		if currentLen+len(sentence) > maxChars && len(current) > 0 {
			chunks = append(chunks, joinChunk(current))

			current, currentLen = overlapTail(current, overlapChars)
		}

		current = append(current, sentence)
		currentLen += len(sentence)
	}

	if len(current) > 0 {
		chunks = append(chunks, joinChunk(current))
	}

	return chunks
}

// splitSentences normalizes embedded newlines to spaces and splits on the
// ". " delimiter, dropping empty segments.
func splitSentences(text string) []string {
	flat := strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	for _, s := range strings.Split(flat, sentenceDelimiter) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sentences = append(sentences, s)
	}
	return sentences
}

// overlapTail walks backward from the end of a closed chunk, greedily keeping
// whole sentences while they fit the overlap budget, preserving original
// order. It stops at the first sentence that would not fit.
func overlapTail(sentences []string, overlapChars int) ([]string, int) {
	var tail []string
	length := 0

	for i := len(sentences) - 1; i >= 0; i-- {
		if length+len(sentences[i]) > overlapChars {
			break
		}
		tail = append([]string{sentences[i]}, tail...)
		length += len(sentences[i])
	}

	return tail, length
}

func joinChunk(sentences []string) string {
	return strings.Join(sentences, sentenceDelimiter) + "."
}
