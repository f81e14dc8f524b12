package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
)

// fakeEmbedder returns deterministic unit vectors and can be told to fail
// for specific texts or a number of leading calls.
type fakeEmbedder struct {
	mu        sync.Mutex
	dims      int
	vectors   map[string][]float32
	failTexts map[string]error
	failFirst int
	calls     int
}

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{
		dims:      dims,
		vectors:   make(map[string][]float32),
		failTexts: make(map[string]error),
	}
}

func (f *fakeEmbedder) vectorFor(text string, v []float32) {
	f.vectors[text] = v
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failFirst > 0 {
		f.failFirst--
		return nil, fmt.Errorf("transient: %w", domain.ErrEmbeddingFailed)
	}
	if err, ok := f.failTexts[text]; ok {
		return nil, err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}

	// Deterministic default: first component from text length.
	v := make([]float32, f.dims)
	v[0] = float32(len(text)%7 + 1)
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, []error) {
	embeddings := make([][]float32, len(texts))
	errs := make([]error, len(texts))
	for i, text := range texts {
		embeddings[i], errs[i] = f.Embed(ctx, text)
	}
	return embeddings, errs
}

func (f *fakeEmbedder) Dimensions() int              { return f.dims }
func (f *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// fakeLLM records prompts and returns a canned reply, optionally failing
// a number of leading calls.
type fakeLLM struct {
	mu        sync.Mutex
	reply     string
	failFirst int
	err       error
	prompts   []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if f.failFirst > 0 {
		f.failFirst--
		if f.err != nil {
			return "", f.err
		}
		return "", fmt.Errorf("timeout: %w", domain.ErrGenerationFailed)
	}
	return f.reply, nil
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

// fakeIndexStore serves a fixed index and stages appended records in
// memory for build tests.
type fakeIndexStore struct {
	mu       sync.Mutex
	index    *domain.Index
	loadErr  error
	beginErr error

	committed []domain.IndexRecord
	manifest  *domain.Manifest
	aborted   bool
}

func (f *fakeIndexStore) Location() string { return "/fake/index" }

func (f *fakeIndexStore) Load(_ context.Context) (*domain.Index, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.index == nil {
		return nil, domain.ErrIndexNotFound
	}
	return f.index, nil
}

func (f *fakeIndexStore) Manifest(ctx context.Context) (*domain.Manifest, error) {
	index, err := f.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &index.Manifest, nil
}

func (f *fakeIndexStore) Begin(_ context.Context, embeddingModel string, dimensions int) (driven.IndexBuilder, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeBuilder{store: f, model: embeddingModel, dims: dimensions}, nil
}

// fakeBuilder stages records in memory.
type fakeBuilder struct {
	store  *fakeIndexStore
	model  string
	dims   int
	staged []domain.IndexRecord
}

func (b *fakeBuilder) Append(_ context.Context, rec domain.IndexRecord) error {
	if len(rec.Chunk.Embedding) != b.dims {
		return domain.ErrDimensionMismatch
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.staged = append(b.staged, rec)
	return nil
}

func (b *fakeBuilder) Commit(_ context.Context, summary domain.BuildSummary) (*domain.Manifest, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	docs := make(map[string]struct{})
	for _, rec := range b.staged {
		docs[rec.Document.ID] = struct{}{}
	}
	manifest := &domain.Manifest{
		Generation:     1,
		BuildID:        summary.BuildID,
		EmbeddingModel: b.model,
		Dimensions:     b.dims,
		DocumentCount:  len(docs),
		ChunkCount:     len(b.staged),
	}
	b.store.committed = b.staged
	b.store.manifest = manifest
	return manifest, nil
}

func (b *fakeBuilder) Abort() error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.store.aborted = true
	return nil
}

// fakeConnector emits a fixed set of raw documents and errors.
type fakeConnector struct {
	docs        []domain.RawDocument
	errs        []error
	validateErr error
}

func (f *fakeConnector) Type() string                    { return "fake" }
func (f *fakeConnector) Validate(_ context.Context) error { return f.validateErr }
func (f *fakeConnector) Close() error                    { return nil }

func (f *fakeConnector) Watch(_ context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{})
	close(ch)
	return ch, nil
}

func (f *fakeConnector) FullCrawl(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, len(f.errs)+1)

	go func() {
		defer close(docs)
		defer close(errs)
		for _, err := range f.errs {
			errs <- err
		}
		for _, doc := range f.docs {
			select {
			case docs <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	return docs, errs
}
