package driven

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// Connector crawls a data source and emits raw documents.
// The filesystem connector is the primary implementation; producers of
// already-extracted text (OCR output, speech transcripts) can implement
// the same interface to feed the build pipeline.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Validate checks the connector is properly configured.
	// For the filesystem connector this checks the root exists and is readable.
	// Returns nil if ready to crawl, an error describing the problem otherwise.
	Validate(ctx context.Context) error

	// FullCrawl walks the source once and streams every eligible document.
	// The document channel is closed when the walk finishes. Per-file
	// extraction failures are reported on the error channel as
	// *domain.ExtractionError and do not stop the crawl.
	// Every eligible file appears exactly once; no ordering is promised.
	FullCrawl(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch reports change events on the source until ctx is cancelled.
	// Events are coalesced; callers are expected to rebuild on change.
	Watch(ctx context.Context) (<-chan struct{}, error)

	// Close releases resources.
	Close() error
}
