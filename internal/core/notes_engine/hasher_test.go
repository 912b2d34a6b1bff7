package notes_engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashContentKnownVectors(t *testing.T) {
	// SHA-256 test vectors; the stored hashes must stay stable across
	// releases or every dedup key breaks.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashContent(""))
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		HashContent("hello"))
}

func TestHashContentDeterministic(t *testing.T) {
	text := "Some extracted lecture text.\n\nWith two paragraphs."
	assert.Equal(t, HashContent(text), HashContent(text))
	assert.Len(t, HashContent(text), 64)
}

func TestHashContentDistinctInputs(t *testing.T) {
	seen := make(map[string]string)
	for i := 0; i < 500; i++ {
		text := fmt.Sprintf("document %d body with filler content", i)
		h := HashContent(text)
		prev, dup := seen[h]
		assert.False(t, dup, "collision between %q and %q", prev, text)
		seen[h] = text
	}

	// A single byte difference must change the hash.
	assert.NotEqual(t, HashContent("abc"), HashContent("abd"))
}
