package notes_engine

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent computes the dedup key for a block of extracted text: the
// SHA-256 digest of its UTF-8 bytes as lowercase hex. Pure function; the
// empty string hashes like any other input.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
