package notes_engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexmill99/studycoach/internal/core"
)

func TestChunkTextInvalidBudget(t *testing.T) {
	for _, budget := range []int{0, -1, -500} {
		_, err := ChunkText("some text", budget)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInvalidConfiguration))
	}
}

func TestChunkTextSmallInput(t *testing.T) {
	chunks, err := ChunkText("short", 100)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 5, chunks[0].End)
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunks, err := ChunkText("", 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Text)
}

func TestChunkTextExactBudget(t *testing.T) {
	text := strings.Repeat("x", 64)
	chunks, err := ChunkText(text, 64)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}

func TestChunkTextParagraphBoundaries(t *testing.T) {
	// Scenario: three paragraphs, budget forces a cut at each break.
	text := "Para one.\n\nPara two.\n\nPara three."
	chunks, err := ChunkText(text, 12)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "Para one.\n\n", chunks[0].Text)
	assert.Equal(t, "Para two.\n\n", chunks[1].Text)
	assert.Equal(t, "Para three.", chunks[2].Text)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch.Text)), 12)
	}
}

func TestChunkTextSentenceBoundary(t *testing.T) {
	// No paragraph breaks in the window, so the cut lands after the last
	// sentence end that fits.
	text := "First sentence. Second sentence. Third one here."
	chunks, err := ChunkText(text, 25)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, "First sentence.", chunks[0].Text)
	assert.True(t, strings.HasPrefix(chunks[1].Text, " Second"))
}

func TestChunkTextWhitespaceFallback(t *testing.T) {
	text := "alpha beta gamma delta epsilon"
	chunks, err := ChunkText(text, 12)
	require.NoError(t, err)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch.Text)), 12)
		assert.NotEmpty(t, ch.Text)
	}
	assert.Equal(t, "alpha beta ", chunks[0].Text)
}

func TestChunkTextHardCut(t *testing.T) {
	// A single giant token has no boundaries anywhere.
	text := strings.Repeat("a", 100)
	chunks, err := ChunkText(text, 7)
	require.NoError(t, err)
	require.Len(t, chunks, 15) // 14*7 + 2
	for i, ch := range chunks[:len(chunks)-1] {
		assert.Equal(t, 7, len(ch.Text), "chunk %d", i)
	}
}

func TestChunkTextReconstruction(t *testing.T) {
	texts := []string{
		"",
		"one short line",
		"Para one.\n\nPara two.\n\nPara three.",
		strings.Repeat("Sentence here. ", 40),
		strings.Repeat("word ", 123) + "\n\n" + strings.Repeat("more ", 77),
		strings.Repeat("z", 301),
		"unicode: 日本語のテキスト。これは文です。 " + strings.Repeat("漢字", 50),
	}
	budgets := []int{1, 2, 5, 12, 64, 1000}

	for _, text := range texts {
		for _, budget := range budgets {
			chunks, err := ChunkText(text, budget)
			require.NoError(t, err)

			var b strings.Builder
			prevEnd := 0
			for i, ch := range chunks {
				assert.Equal(t, i, ch.Index)
				assert.Equal(t, prevEnd, ch.Start, "chunks must be contiguous")
				assert.LessOrEqual(t, len([]rune(ch.Text)), budget)
				if text != "" {
					assert.NotEmpty(t, ch.Text)
				}
				b.WriteString(ch.Text)
				prevEnd = ch.End
			}
			assert.Equal(t, text, b.String(), "budget %d must reconstruct input", budget)
		}
	}
}

func TestApproxTokens(t *testing.T) {
	assert.Equal(t, 0, ApproxTokens(""))
	assert.Equal(t, 1, ApproxTokens("abc"))
	assert.Equal(t, 2, ApproxTokens("abcdefgh"))
}
