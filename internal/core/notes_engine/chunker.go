package notes_engine

import (
	"fmt"
	"unicode"

	"github.com/lexmill99/studycoach/internal/core"
)

// Chunk is one bounded, contiguous segment of the source text.
//
// Index:      zero-based position of the chunk inside the document.
// Start, End: rune offsets into the source ([Start, End)).
// Text:       the exact slice; concatenating all chunks' Text in Index
//             order reproduces the source byte-for-byte.
type Chunk struct {
	Index int
	Start int
	End   int
	Text  string
}

// ChunkText splits text into ordered chunks of at most maxChunkChars runes,
// preferring to cut at natural boundaries so each chunk stays coherent for
// the generation model. Boundary preference within a window, closest to the
// budget first: paragraph break, sentence end, any whitespace, hard cut.
// Boundary characters always stay with the leading chunk, so chunks never
// overlap and nothing is dropped between them.
func ChunkText(text string, maxChunkChars int) ([]Chunk, error) {
	if maxChunkChars <= 0 {
		return nil, fmt.Errorf("%w: maxChunkChars must be positive, got %d", core.ErrInvalidConfiguration, maxChunkChars)
	}

	runes := []rune(text)
	if len(runes) <= maxChunkChars {
		return []Chunk{{Index: 0, Start: 0, End: len(runes), Text: text}}, nil
	}

	var chunks []Chunk
	start := 0
	for start < len(runes) {
		if len(runes)-start <= maxChunkChars {
			chunks = append(chunks, Chunk{
				Index: len(chunks),
				Start: start,
				End:   len(runes),
				Text:  string(runes[start:]),
			})
			break
		}

		cut := boundaryCut(runes, start, start+maxChunkChars)
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: start,
			End:   cut,
			Text:  string(runes[start:cut]),
		})
		start = cut
	}
	return chunks, nil
}

// boundaryCut picks the end (exclusive) of the next chunk inside
// (start, limit]. It never returns start, so chunks are never empty.
func boundaryCut(runes []rune, start, limit int) int {
	// Paragraph break: last "\n\n" that fits entirely inside the window.
	for i := limit - 2; i >= start; i-- {
		if runes[i] == '\n' && runes[i+1] == '\n' {
			return i + 2
		}
	}

	// Sentence end: punctuation followed by whitespace; the whitespace
	// opens the next chunk.
	for i := limit - 1; i >= start; i-- {
		if isSentenceEnd(runes[i]) && unicode.IsSpace(runes[i+1]) {
			return i + 1
		}
	}

	// Any whitespace, kept at the tail of the leading chunk.
	for i := limit - 1; i >= start; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	// No natural boundary anywhere in the window: hard cut at the budget.
	return limit
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// ApproxTokens is a cheap token estimator (~4 chars ≈ 1 token), used for the
// stored per-chunk token counts.
func ApproxTokens(s string) int {
	n := len([]rune(s))
	if n <= 0 {
		return 0
	}
	return (n + 3) / 4
}
