package driven

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// IndexStore is the durable system of record for built indexes.
//
// A store location is physically partitioned into a content store
// (chunk text + document metadata), a vector store (embeddings), and a
// manifest. Each part deserialises independently and is cross-validated
// against the others on load: an orphaned vector or orphaned content
// entry is domain.ErrCorruptedIndex, never a silent partial load.
//
// Builds are append-only and single-writer; the only way to update or
// remove a document is a full rebuild. Load never auto-creates an empty
// index: a missing location is domain.ErrIndexNotFound.
//
// The brute-force retriever enumerates Index.Records; a store backed by
// an approximate-nearest-neighbour structure can satisfy the same
// interface by materialising records on Load.
type IndexStore interface {
	// Begin starts a new build generation, taking an exclusive build lock
	// on the store location. Any previous generation is discarded on
	// Commit, not on Begin. Returns domain.ErrBuildInProgress if another
	// process holds the lock.
	Begin(ctx context.Context, embeddingModel string, dimensions int) (IndexBuilder, error)

	// Load reads and cross-validates the current generation.
	Load(ctx context.Context) (*domain.Index, error)

	// Manifest reads only the manifest of the current generation.
	Manifest(ctx context.Context) (*domain.Manifest, error)

	// Location returns the store's root directory.
	Location() string
}

// IndexBuilder is the single-writer handle for one build generation.
type IndexBuilder interface {
	// Append stages one record. The embedding dimension must match the
	// dimension the build was begun with; a mismatch is
	// domain.ErrDimensionMismatch.
	Append(ctx context.Context, record domain.IndexRecord) error

	// Commit atomically replaces the previous generation with the staged
	// records, writes the manifest, and releases the build lock.
	Commit(ctx context.Context, summary domain.BuildSummary) (*domain.Manifest, error)

	// Abort discards the staged records and releases the build lock.
	// The previous generation remains loadable.
	Abort() error
}
