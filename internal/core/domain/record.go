package domain

// IndexRecord is the atomic unit written to and read from the index store.
// It joins a chunk, its embedding, and the owning document's metadata.
type IndexRecord struct {
	// Chunk is the indexed text unit. Chunk.Embedding carries the vector.
	Chunk Chunk

	// Document is the owning document's metadata. Content is left empty in
	// records; the chunk text is the persisted unit.
	Document Document
}

// RetrievedRecord is one ranked retrieval hit.
type RetrievedRecord struct {
	// Record is the matched index record.
	Record IndexRecord

	// Score is the cosine similarity against the query embedding.
	Score float64
}

// QueryResult is the ordered retrieval output for one query.
// Records are sorted by descending score; ties break by ascending chunk ID.
// It is produced fresh per query and never persisted.
type QueryResult struct {
	Records []RetrievedRecord
}

// ChunkTexts returns the retrieved chunk texts in ranked order.
func (r QueryResult) ChunkTexts() []string {
	texts := make([]string, len(r.Records))
	for i := range r.Records {
		texts[i] = r.Records[i].Record.Chunk.Content
	}
	return texts
}
