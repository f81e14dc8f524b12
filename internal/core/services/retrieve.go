package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// rankRecords scores every record against the query embedding and returns
// the top k by descending cosine similarity. Ties break by ascending
// chunk ID, so equal-scoring rebuilt indexes rank identically.
func rankRecords(records []domain.IndexRecord, query []float32, k int) []domain.RetrievedRecord {
	scored := make([]domain.RetrievedRecord, 0, len(records))
	for _, record := range records {
		scored = append(scored, domain.RetrievedRecord{
			Record: record,
			Score:  cosineSimilarity(query, record.Chunk.Embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Record.Chunk.ID < scored[j].Record.Chunk.ID
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// A zero vector scores 0 against everything.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
