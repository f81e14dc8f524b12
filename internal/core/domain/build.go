package domain

import "time"

// BuildSummary aggregates the outcome of one index build.
// Per-file and per-chunk failures are isolated and counted here rather
// than aborting the crawl.
type BuildSummary struct {
	// BuildID identifies the build run recorded in the index manifest.
	BuildID string

	// DocumentsIndexed is the count of documents whose chunks entered the index.
	DocumentsIndexed int

	// DocumentsSkipped is the count of eligible files that produced no text.
	DocumentsSkipped int

	// DocumentsFailed is the count of files that failed extraction.
	DocumentsFailed int

	// ChunksEmbedded is the count of chunks persisted with embeddings.
	ChunksEmbedded int

	// ChunksFailed is the count of chunks dropped after embedding failures.
	ChunksFailed int

	// Duration is the wall-clock time of the build.
	Duration time.Duration
}
