// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"unicode/utf8"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping bytes.
const DefaultChunkOverlap = 200

// Processor splits document content into fixed-size chunks.
// It implements the PostProcessor interface. Chunk IDs derive from the
// document ID and chunk position, so re-chunking the same content yields
// the same IDs.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from
// document content. A document whose content fits in one chunk produces
// exactly one chunk; empty content produces none. Chunk boundaries never
// split a UTF-8 rune.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	content := doc.Content
	contentLen := len(content)

	estimatedChunks := (contentLen / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	position := 0
	start := 0

	for start < contentLen {
		end := start + p.chunkSize
		if end > contentLen {
			end = contentLen
		} else {
			end = runeStartBefore(content, end)
			if end <= start {
				// Chunk smaller than one rune; take the whole rune.
				end = runeStartAfter(content, start+1)
			}
		}

		chunk := domain.Chunk{
			ID:          domain.ChunkID(doc.ID, position),
			DocumentID:  doc.ID,
			Content:     content[start:end],
			Position:    position,
			StartOffset: start,
			EndOffset:   end,
		}

		chunks = append(chunks, chunk)
		position++

		next := runeStartBefore(content, start+p.chunkSize-p.overlap)
		if next <= start {
			next = start + p.chunkSize - p.overlap
		}
		start = next
	}

	return chunks, nil
}

// runeStartBefore returns the largest rune start not after i.
// An i at or past the end of s is already a valid boundary.
func runeStartBefore(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// runeStartAfter returns the smallest rune start not before i, or len(s).
func runeStartAfter(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
