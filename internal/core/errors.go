package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes the pipeline distinguishes. Handlers
// map these onto HTTP status codes; everything else is a 500.
var (
	// ErrInvalidConfiguration signals a bad tuning parameter (e.g. a chunk
	// budget <= 0). Fatal for the request, never retried.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnreadablePDF signals the extractor could not get text out of the
	// uploaded bytes (corrupt or not a PDF).
	ErrUnreadablePDF = errors.New("unreadable pdf")

	// ErrNotFound signals a lookup by hash or id with no match.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey signals a uniqueness violation on insert. For the
	// notes table this is the dedup race losing; callers recover by
	// re-reading the winner's row.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUpstreamRateLimited signals the generation API returned a rate
	// limit response. Surfaced to the caller, not retried here.
	ErrUpstreamRateLimited = errors.New("upstream rate limited")

	// ErrUpstreamTimeout signals an external call exceeded its deadline.
	ErrUpstreamTimeout = errors.New("upstream timeout")
)

// UpstreamError carries the status and message of a non-rate-limit failure
// from the generation API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
}
