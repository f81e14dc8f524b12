package driving

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// Indexer coordinates a full index build from a crawl.
// Build and query are mutually exclusive phases on one store location;
// the store's build lock enforces this.
type Indexer interface {
	// Build crawls the configured source, extracts and embeds its text,
	// and commits a new index generation. Per-file and per-chunk failures
	// are isolated and aggregated into the returned summary.
	Build(ctx context.Context) (*domain.BuildSummary, error)
}
