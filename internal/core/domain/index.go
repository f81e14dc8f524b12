package domain

import "time"

// Manifest describes one generation of a persisted index.
// It is the cross-cutting metadata structure that the content and vector
// stores are validated against on load.
type Manifest struct {
	// Generation counts completed builds at this location, starting at 1.
	Generation int `json:"generation"`

	// BuildID identifies the build run that produced this generation.
	BuildID string `json:"build_id"`

	// EmbeddingModel is the model every vector in this index came from.
	EmbeddingModel string `json:"embedding_model"`

	// Dimensions is the vector size shared by every embedding.
	// Mixing dimensions within one index is illegal.
	Dimensions int `json:"dimensions"`

	// DocumentCount and ChunkCount are the persisted record counts.
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`

	// CreatedAt is when the build committed.
	CreatedAt time.Time `json:"created_at"`
}

// Index is a fully loaded, read-only index generation.
// Concurrent queries against one Index require no locking.
type Index struct {
	// Manifest is the generation metadata the records were validated against.
	Manifest Manifest

	// Records holds every persisted record, sorted by ascending chunk ID.
	Records []IndexRecord
}

// Empty reports whether the index holds no records.
func (i *Index) Empty() bool {
	return len(i.Records) == 0
}
