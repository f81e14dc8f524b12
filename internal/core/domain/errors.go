package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexNotFound indicates a query was attempted against an index
	// location that has never been built. It is deliberately distinct from
	// ErrCorruptedIndex: the caller should build, not rebuild.
	ErrIndexNotFound = errors.New("index not found")

	// ErrCorruptedIndex indicates the persisted index failed cross-validation
	// on load (orphaned vectors or orphaned content). Fatal; requires rebuild.
	ErrCorruptedIndex = errors.New("corrupted index")

	// ErrDimensionMismatch indicates an embedding whose dimension differs
	// from the index's configured dimension. Mixing dimensions is illegal.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrBuildInProgress indicates another process holds the build lock
	// on the index location.
	ErrBuildInProgress = errors.New("build in progress")

	// ErrEmbeddingFailed indicates the embedding service could not produce
	// a vector (transport failure, timeout, or non-success status). Retryable.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed indicates the generation service could not produce
	// a completion (transport failure or timeout). Retryable.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrMalformedResponse indicates a model service replied without the
	// expected field. Distinct from a transport failure.
	ErrMalformedResponse = errors.New("malformed model response")
)

// ExtractionError reports a per-file extraction failure.
// It is logged and counted during a build but never aborts the crawl.
type ExtractionError struct {
	// Path is the file that failed.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}
