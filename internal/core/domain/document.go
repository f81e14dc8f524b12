package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

// ExtractionStatus records the outcome of extracting a crawled file.
type ExtractionStatus int

const (
	// ExtractionSucceeded indicates text was extracted from the file.
	ExtractionSucceeded ExtractionStatus = iota

	// ExtractionSkipped indicates the file was eligible but no extractor
	// produced usable text (e.g. an unsupported binary format).
	ExtractionSkipped

	// ExtractionFailed indicates an I/O or parse error during extraction.
	ExtractionFailed
)

// String returns the human-readable status name.
func (s ExtractionStatus) String() string {
	switch s {
	case ExtractionSucceeded:
		return "succeeded"
	case ExtractionSkipped:
		return "skipped"
	case ExtractionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Document represents one crawled source file after normalisation.
// It is immutable once extracted.
type Document struct {
	// ID is the unique identifier, derived deterministically from the path.
	ID string

	// Path is the absolute location of the source file.
	Path string

	// Title is the human-readable title.
	Title string

	// MIMEType is the detected content type (e.g. "text/plain", "audio/mpeg").
	MIMEType string

	// Content is the full extracted text before chunking.
	Content string

	// Status records the extraction outcome.
	Status ExtractionStatus

	// ModTime is the file's last-modified timestamp at crawl time.
	ModTime time.Time

	// Metadata contains format-specific key-value pairs.
	Metadata map[string]any
}

// Chunk represents an embeddable unit of text within a document.
// Documents are split into chunks to bound embedding-input size.
type Chunk struct {
	// ID is the unique identifier within the index.
	// It is derived as "<documentID>:<position>" so identifiers of one
	// document sort in chunk order, which keeps tie-breaking deterministic.
	ID string

	// DocumentID is a back-reference to the owning Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// StartOffset and EndOffset are the byte range of Content within the
	// document's extracted text. Both zero when unknown.
	StartOffset int
	EndOffset   int

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// DocumentID derives the deterministic identifier for a source path.
// The same path always maps to the same identifier, which makes chunk
// identifiers stable across rebuilds of the same tree.
func DocumentID(path string) string {
	h := sha1.Sum([]byte(path))
	return hex.EncodeToString(h[:8])
}

// ChunkID derives the identifier for a chunk at the given position.
// Positions are zero-padded so lexicographic order matches chunk order.
func ChunkID(documentID string, position int) string {
	return fmt.Sprintf("%s:%04d", documentID, position)
}
