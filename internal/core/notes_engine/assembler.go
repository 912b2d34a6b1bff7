package notes_engine

import "strings"

// AssembleNotes merges per-chunk generated notes back into one document,
// in chunk-index order, separated by a single blank line. A single part is
// returned unchanged. The merge is purely positional; no deduplication or
// summarization happens across chunk boundaries.
func AssembleNotes(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts, "\n\n")
}
