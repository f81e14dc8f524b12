package localindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	return store
}

func testRecord(path string, position int, embedding []float32) domain.IndexRecord {
	docID := domain.DocumentID(path)
	return domain.IndexRecord{
		Chunk: domain.Chunk{
			ID:         domain.ChunkID(docID, position),
			DocumentID: docID,
			Content:    "chunk " + path,
			Position:   position,
			Embedding:  embedding,
		},
		Document: domain.Document{
			ID:       docID,
			Path:     path,
			Title:    filepath.Base(path),
			MIMEType: "text/plain",
		},
	}
}

func buildIndex(t *testing.T, store *Store, records ...domain.IndexRecord) *domain.Manifest {
	t.Helper()
	ctx := context.Background()

	builder, err := store.Begin(ctx, "nomic-embed-text", 3)
	require.NoError(t, err)

	for _, record := range records {
		require.NoError(t, builder.Append(ctx, record))
	}

	manifest, err := builder.Commit(ctx, domain.BuildSummary{BuildID: "build-1"})
	require.NoError(t, err)
	return manifest
}

func TestStore_LoadMissingLocation(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)

	_, err = store.Manifest(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestStore_BuildAndLoad(t *testing.T) {
	store := newTestStore(t)

	manifest := buildIndex(t, store,
		testRecord("/docs/a.txt", 0, []float32{1, 0, 0}),
		testRecord("/docs/a.txt", 1, []float32{0, 1, 0}),
		testRecord("/docs/b.txt", 0, []float32{0, 0, 1}),
	)

	assert.Equal(t, 1, manifest.Generation)
	assert.Equal(t, "build-1", manifest.BuildID)
	assert.Equal(t, "nomic-embed-text", manifest.EmbeddingModel)
	assert.Equal(t, 3, manifest.Dimensions)
	assert.Equal(t, 2, manifest.DocumentCount)
	assert.Equal(t, 3, manifest.ChunkCount)

	index, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, index.Records, 3)
	assert.Equal(t, *manifest, index.Manifest)

	// Records are sorted by ascending chunk ID.
	for i := 1; i < len(index.Records); i++ {
		assert.Less(t, index.Records[i-1].Chunk.ID, index.Records[i].Chunk.ID)
	}

	// Embeddings survived the round trip.
	byID := make(map[string][]float32)
	for _, record := range index.Records {
		byID[record.Chunk.ID] = record.Chunk.Embedding
		assert.NotEmpty(t, record.Document.Path)
		assert.NotEmpty(t, record.Chunk.Content)
	}
	docA := domain.DocumentID("/docs/a.txt")
	assert.Equal(t, []float32{1, 0, 0}, byID[domain.ChunkID(docA, 0)])
	assert.Equal(t, []float32{0, 1, 0}, byID[domain.ChunkID(docA, 1)])
}

func TestStore_RebuildIncrementsGeneration(t *testing.T) {
	store := newTestStore(t)

	first := buildIndex(t, store, testRecord("/docs/a.txt", 0, []float32{1, 0, 0}))
	assert.Equal(t, 1, first.Generation)

	second := buildIndex(t, store, testRecord("/docs/b.txt", 0, []float32{0, 1, 0}))
	assert.Equal(t, 2, second.Generation)

	// The new generation fully replaces the old one.
	index, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, index.Records, 1)
	assert.Equal(t, "/docs/b.txt", index.Records[0].Document.Path)
}

func TestStore_AbortKeepsPreviousGeneration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	buildIndex(t, store, testRecord("/docs/a.txt", 0, []float32{1, 0, 0}))

	builder, err := store.Begin(ctx, "nomic-embed-text", 3)
	require.NoError(t, err)
	require.NoError(t, builder.Append(ctx, testRecord("/docs/b.txt", 0, []float32{0, 1, 0})))
	require.NoError(t, builder.Abort())

	index, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, index.Records, 1)
	assert.Equal(t, "/docs/a.txt", index.Records[0].Document.Path)
	assert.Equal(t, 1, index.Manifest.Generation)
}

func TestStore_BeginWhileLocked(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	builder, err := store.Begin(ctx, "nomic-embed-text", 3)
	require.NoError(t, err)
	defer builder.Abort() //nolint:errcheck

	_, err = store.Begin(ctx, "nomic-embed-text", 3)
	assert.ErrorIs(t, err, domain.ErrBuildInProgress)
}

func TestStore_BeginReleasesLockOnCommit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	buildIndex(t, store, testRecord("/docs/a.txt", 0, []float32{1, 0, 0}))

	// A new build can begin after the previous one committed.
	builder, err := store.Begin(ctx, "nomic-embed-text", 3)
	require.NoError(t, err)
	require.NoError(t, builder.Abort())
}

func TestBuilder_DimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	builder, err := store.Begin(ctx, "nomic-embed-text", 3)
	require.NoError(t, err)
	defer builder.Abort() //nolint:errcheck

	err = builder.Append(ctx, testRecord("/docs/a.txt", 0, []float32{1, 0}))
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_BeginValidatesInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Begin(ctx, "", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.Begin(ctx, "nomic-embed-text", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_OrphanVectorIsCorruption(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	buildIndex(t, store, testRecord("/docs/a.txt", 0, []float32{1, 0, 0}))

	// Rewrite the vector store with an extra vector no chunk owns.
	vectorPath := filepath.Join(store.Location(), vectorsFile)
	dims, vectors, err := readVectorFile(vectorPath)
	require.NoError(t, err)

	entries := make([]vectorEntry, 0, len(vectors)+1)
	for id, embedding := range vectors {
		entries = append(entries, vectorEntry{chunkID: id, embedding: embedding})
	}
	entries = append(entries, vectorEntry{chunkID: "c42", embedding: []float32{9, 9, 9}})
	require.NoError(t, writeVectorFile(vectorPath, dims, entries))

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrCorruptedIndex)
}

func TestStore_MissingVectorIsCorruption(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	buildIndex(t, store,
		testRecord("/docs/a.txt", 0, []float32{1, 0, 0}),
		testRecord("/docs/a.txt", 1, []float32{0, 1, 0}),
	)

	// Drop one vector so a chunk is left without an embedding.
	vectorPath := filepath.Join(store.Location(), vectorsFile)
	dims, vectors, err := readVectorFile(vectorPath)
	require.NoError(t, err)

	docID := domain.DocumentID("/docs/a.txt")
	delete(vectors, domain.ChunkID(docID, 1))

	entries := make([]vectorEntry, 0, len(vectors))
	for id, embedding := range vectors {
		entries = append(entries, vectorEntry{chunkID: id, embedding: embedding})
	}
	require.NoError(t, writeVectorFile(vectorPath, dims, entries))

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrCorruptedIndex)
}

func TestStore_ManifestOnlyRead(t *testing.T) {
	store := newTestStore(t)

	buildIndex(t, store, testRecord("/docs/a.txt", 0, []float32{1, 0, 0}))

	manifest, err := store.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, manifest.Generation)
	assert.Equal(t, 1, manifest.ChunkCount)
	assert.False(t, manifest.CreatedAt.IsZero())
}

func TestVectorFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")

	entries := []vectorEntry{
		{chunkID: "a:0000", embedding: []float32{0.25, -1.5, 3}},
		{chunkID: "b:0001", embedding: []float32{1e-6, 42, -0.125}},
	}
	require.NoError(t, writeVectorFile(path, 3, entries))

	dims, vectors, err := readVectorFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, dims)
	require.Len(t, vectors, 2)
	assert.Equal(t, entries[0].embedding, vectors["a:0000"])
	assert.Equal(t, entries[1].embedding, vectors["b:0001"])
}

func TestStore_BeginSweepsStaleStaging(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Simulate a build that died between Begin and Commit.
	stale := filepath.Join(store.Location(), ".staging-deadbeef")
	require.NoError(t, os.MkdirAll(stale, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(stale, contentFile), []byte("leftover"), 0600))

	builder, err := store.Begin(ctx, "nomic-embed-text", 3)
	require.NoError(t, err)
	require.NoError(t, builder.Abort())

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}
