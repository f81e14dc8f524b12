package localindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Ensure builder implements the interface.
var _ driven.IndexBuilder = (*builder)(nil)

// builder stages one build generation in a hidden directory and swaps it
// into place on Commit.
type builder struct {
	store          *Store
	lock           *flock.Flock
	stagingDir     string
	db             *sql.DB
	embeddingModel string
	dimensions     int
	prevGeneration int

	mu       sync.Mutex
	entries  []vectorEntry
	docSeen  map[string]struct{}
	finished bool
}

// Append stages one record.
func (b *builder) Append(ctx context.Context, record domain.IndexRecord) error {
	if len(record.Chunk.Embedding) != b.dimensions {
		return fmt.Errorf("chunk %s has %d dimensions, index built with %d: %w",
			record.Chunk.ID, len(record.Chunk.Embedding), b.dimensions, domain.ErrDimensionMismatch)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return fmt.Errorf("append after commit or abort: %w", domain.ErrInvalidInput)
	}

	if _, seen := b.docSeen[record.Document.ID]; !seen {
		if err := b.insertDocument(ctx, record.Document); err != nil {
			return err
		}
		b.docSeen[record.Document.ID] = struct{}{}
	}

	if err := b.insertChunk(ctx, record.Chunk); err != nil {
		return err
	}

	b.entries = append(b.entries, vectorEntry{
		chunkID:   record.Chunk.ID,
		embedding: record.Chunk.Embedding,
	})
	return nil
}

// insertDocument writes one document row to the staging content store.
// Content is not persisted; the chunk text is the indexed unit.
func (b *builder) insertDocument(ctx context.Context, doc domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling document metadata: %w", err)
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO documents (id, path, title, mime_type, mod_time, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			title = excluded.title,
			mime_type = excluded.mime_type,
			mod_time = excluded.mod_time,
			metadata = excluded.metadata
	`, doc.ID, doc.Path, doc.Title, doc.MIMEType, doc.ModTime, string(metadataJSON))

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// insertChunk writes one chunk row to the staging content store.
func (b *builder) insertChunk(ctx context.Context, chunk domain.Chunk) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO chunks (id, document_id, content, position, start_offset, end_offset)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			content = excluded.content,
			position = excluded.position,
			start_offset = excluded.start_offset,
			end_offset = excluded.end_offset
	`, chunk.ID, chunk.DocumentID, chunk.Content, chunk.Position, chunk.StartOffset, chunk.EndOffset)

	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// Commit atomically replaces the previous generation with the staged
// records. The manifest is moved into place last, so a crash mid-commit
// leaves a readable previous manifest rather than a half-written new one.
func (b *builder) Commit(_ context.Context, summary domain.BuildSummary) (*domain.Manifest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return nil, fmt.Errorf("commit after commit or abort: %w", domain.ErrInvalidInput)
	}
	b.finished = true
	defer b.release()

	if err := b.db.Close(); err != nil {
		return nil, fmt.Errorf("closing staging content store: %w", err)
	}

	if err := writeVectorFile(filepath.Join(b.stagingDir, vectorsFile), b.dimensions, b.entries); err != nil {
		return nil, err
	}

	manifest := domain.Manifest{
		Generation:     b.prevGeneration + 1,
		BuildID:        summary.BuildID,
		EmbeddingModel: b.embeddingModel,
		Dimensions:     b.dimensions,
		DocumentCount:  len(b.docSeen),
		ChunkCount:     len(b.entries),
		CreatedAt:      now().UTC(),
	}
	if err := writeManifest(filepath.Join(b.stagingDir, manifestFile), manifest); err != nil {
		return nil, err
	}

	for _, name := range []string{contentFile, vectorsFile, manifestFile} {
		src := filepath.Join(b.stagingDir, name)
		dst := filepath.Join(b.store.location, name)
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("installing %s: %w", name, err)
		}
	}

	logger.Debug("Committed index generation %d (%d documents, %d chunks)",
		manifest.Generation, manifest.DocumentCount, manifest.ChunkCount)
	return &manifest, nil
}

// Abort discards the staged records and releases the build lock.
func (b *builder) Abort() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return nil
	}
	b.finished = true
	defer b.release()

	if err := b.db.Close(); err != nil {
		logger.Warn("Closing staging content store: %v", err)
	}
	return nil
}

// release removes the staging directory and drops the build lock.
func (b *builder) release() {
	if err := os.RemoveAll(b.stagingDir); err != nil {
		logger.Warn("Removing staging directory: %v", err)
	}
	if err := b.lock.Unlock(); err != nil {
		logger.Warn("Releasing build lock: %v", err)
	}
}
