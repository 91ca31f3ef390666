package errors

import "errors"

// Sentinels for the core error taxonomy. Callers classify with errors.Is after
// unwrapping whatever context was added along the way.
var (
	// ErrInvalidConfiguration means bad caller-supplied parameters. Never retried.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Missing-entity sentinels, surfaced to callers as 4xx-equivalents.
	ErrDocumentNotFound = errors.New("document not found")
	ErrContentNotFound  = errors.New("content not found")
	ErrTestNotFound     = errors.New("test not found")
	ErrStudentNotFound  = errors.New("student not found")

	// External-dependency failures. Safe to retry with backoff a bounded
	// number of times before surfacing.
	ErrEmbeddingFailure  = errors.New("embedding failure")
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrInsufficientContent means generation cannot proceed from the
	// available grounding material. Surfaced, not retried.
	ErrInsufficientContent = errors.New("insufficient content")

	// ErrAlreadyEvaluated guards evaluation idempotence. A finalized
	// submission is never re-scored.
	ErrAlreadyEvaluated = errors.New("submission already evaluated")
)
