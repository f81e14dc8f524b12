package localindex

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/recall-cli/internal/adapters/driven/storage/localindex/migrations"
	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// File names within an index location.
const (
	contentFile  = "content.db"
	vectorsFile  = "vectors.bin"
	manifestFile = "manifest.json"
	lockFile     = ".build.lock"
)

// Store is the on-disk index store rooted at one directory.
type Store struct {
	location string
}

// NewStore creates a store for the given location.
// If location is empty, defaults to ~/.recall/index. The directory is not
// created until a build begins; loading a location that was never built
// returns ErrIndexNotFound.
func NewStore(location string) (*Store, error) {
	if location == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		location = filepath.Join(home, ".recall", "index")
	}

	return &Store{location: location}, nil
}

// Location returns the store's root directory.
func (s *Store) Location() string {
	return s.location
}

// Manifest reads only the manifest of the current generation.
func (s *Store) Manifest(_ context.Context) (*domain.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.location, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("index at %s: %w", s.location, domain.ErrIndexNotFound)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("manifest at %s: %w: %w", s.location, domain.ErrCorruptedIndex, err)
	}

	return &manifest, nil
}

// Load reads and cross-validates the current generation.
func (s *Store) Load(ctx context.Context) (*domain.Index, error) {
	manifest, err := s.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.loadRecords(ctx, manifest)
	if err != nil {
		return nil, err
	}

	return &domain.Index{
		Manifest: *manifest,
		Records:  records,
	}, nil
}

// loadRecords joins the content store with the vector store and validates
// both against the manifest.
func (s *Store) loadRecords(ctx context.Context, manifest *domain.Manifest) ([]domain.IndexRecord, error) {
	contentPath := filepath.Join(s.location, contentFile)
	if _, err := os.Stat(contentPath); err != nil {
		return nil, fmt.Errorf("%w: content store missing at %s", domain.ErrCorruptedIndex, s.location)
	}

	vectorDims, vectors, err := readVectorFile(filepath.Join(s.location, vectorsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: vector store at %s: %w", domain.ErrCorruptedIndex, s.location, err)
	}
	if vectorDims != manifest.Dimensions {
		return nil, fmt.Errorf("%w: vector store has %d dimensions, manifest says %d", domain.ErrCorruptedIndex, vectorDims, manifest.Dimensions)
	}

	db, err := openContentDB(contentPath, false)
	if err != nil {
		return nil, fmt.Errorf("%w: opening content store: %w", domain.ErrCorruptedIndex, err)
	}
	defer db.Close()

	documents, err := readDocuments(ctx, db)
	if err != nil {
		return nil, err
	}

	chunks, err := readChunks(ctx, db)
	if err != nil {
		return nil, err
	}

	if len(documents) != manifest.DocumentCount {
		return nil, fmt.Errorf("%w: content store has %d documents, manifest says %d", domain.ErrCorruptedIndex, len(documents), manifest.DocumentCount)
	}
	if len(chunks) != manifest.ChunkCount {
		return nil, fmt.Errorf("%w: content store has %d chunks, manifest says %d", domain.ErrCorruptedIndex, len(chunks), manifest.ChunkCount)
	}

	records := make([]domain.IndexRecord, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, ok := vectors[chunk.ID]
		if !ok {
			return nil, fmt.Errorf("%w: chunk %s has no vector", domain.ErrCorruptedIndex, chunk.ID)
		}
		delete(vectors, chunk.ID)

		doc, ok := documents[chunk.DocumentID]
		if !ok {
			return nil, fmt.Errorf("%w: chunk %s references unknown document %s", domain.ErrCorruptedIndex, chunk.ID, chunk.DocumentID)
		}

		chunk.Embedding = embedding
		records = append(records, domain.IndexRecord{
			Chunk:    chunk,
			Document: doc,
		})
	}

	// Anything left in the vector map has no content entry.
	for orphan := range vectors {
		return nil, fmt.Errorf("%w: vector %s has no chunk", domain.ErrCorruptedIndex, orphan)
	}

	return records, nil
}

// Begin starts a new build generation, taking the exclusive build lock.
func (s *Store) Begin(ctx context.Context, embeddingModel string, dimensions int) (driven.IndexBuilder, error) {
	if embeddingModel == "" || dimensions <= 0 {
		return nil, fmt.Errorf("embedding model %q with %d dimensions: %w", embeddingModel, dimensions, domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(s.location, 0700); err != nil {
		return nil, fmt.Errorf("creating index location: %w", err)
	}

	lock := flock.New(filepath.Join(s.location, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring build lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("index at %s: %w", s.location, domain.ErrBuildInProgress)
	}

	// Holding the lock, so any staging directory here is from a build
	// that died before commit.
	sweepStaging(s.location)

	// Previous generation number, 0 when this is the first build.
	generation := 0
	if manifest, err := s.Manifest(ctx); err == nil {
		generation = manifest.Generation
	} else if !errors.Is(err, domain.ErrIndexNotFound) {
		logger.Warn("Previous manifest unreadable, rebuilding from generation 1: %v", err)
	}

	stagingDir := filepath.Join(s.location, ".staging-"+uuid.New().String()[:8])
	if err := os.MkdirAll(stagingDir, 0700); err != nil {
		lock.Unlock() //nolint:errcheck
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	db, err := openContentDB(filepath.Join(stagingDir, contentFile), true)
	if err != nil {
		os.RemoveAll(stagingDir) //nolint:errcheck
		lock.Unlock()            //nolint:errcheck
		return nil, fmt.Errorf("opening staging content store: %w", err)
	}

	return &builder{
		store:          s,
		lock:           lock,
		stagingDir:     stagingDir,
		db:             db,
		embeddingModel: embeddingModel,
		dimensions:     dimensions,
		prevGeneration: generation,
		docSeen:        make(map[string]struct{}),
	}, nil
}

// sweepStaging removes staging directories left behind by interrupted
// builds. The caller must hold the build lock.
func sweepStaging(location string) {
	stale, err := filepath.Glob(filepath.Join(location, ".staging-*"))
	if err != nil {
		return
	}
	for _, dir := range stale {
		logger.Debug("Removing stale staging directory %s", dir)
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("Could not remove stale staging directory %s: %v", dir, err)
		}
	}
}

// openContentDB opens the SQLite content store, running migrations when
// migrate is true.
func openContentDB(path string, migrate bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if migrate {
		if err := runMigrations(db, migrations.FS); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return db, nil
}

// runMigrations applies all pending .up.sql migrations in version order.
func runMigrations(db *sql.DB, fsys embed.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// readDocuments loads all document rows keyed by ID.
func readDocuments(ctx context.Context, db *sql.DB) (map[string]domain.Document, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, path, title, mime_type, mod_time, metadata
		FROM documents
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	documents := make(map[string]domain.Document)
	for rows.Next() {
		var doc domain.Document
		var modTime sql.NullTime
		var metadataJSON sql.NullString
		if err := rows.Scan(&doc.ID, &doc.Path, &doc.Title, &doc.MIMEType, &modTime, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		if modTime.Valid {
			doc.ModTime = modTime.Time
		}
		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &doc.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling document metadata: %w", err)
			}
		}
		doc.Status = domain.ExtractionSucceeded
		documents[doc.ID] = doc
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return documents, nil
}

// readChunks loads all chunk rows in ascending ID order.
func readChunks(ctx context.Context, db *sql.DB) ([]domain.Chunk, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, document_id, content, position, start_offset, end_offset
		FROM chunks ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
			&chunk.Position, &chunk.StartOffset, &chunk.EndOffset); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// writeManifest writes the manifest JSON to path.
func writeManifest(path string, manifest domain.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// now is overridable for tests.
var now = time.Now
