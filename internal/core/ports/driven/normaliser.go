package driven

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// Normaliser transforms raw documents into extracted text form.
// Each normaliser handles specific MIME types (e.g. plain text, Markdown,
// audio metadata). The format set is closed: an unmatched MIME type is a
// skip, not a runtime type probe.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts text from a raw document.
	// A format with no extractable body must still produce a fallback text
	// unit naming the file, so the file appears in the index with minimal
	// signal. I/O or parse failures are returned as errors and wrapped into
	// *domain.ExtractionError by the caller.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Normalisation only produces a Document with Content; chunking is handled
// by the PostProcessor pipeline.
type NormaliseResult struct {
	// Document is the normalised document with Content populated.
	Document domain.Document
}

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers and dispatches on
// MIME type.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
