package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Ensure BuildService implements the interface.
var _ driving.Indexer = (*BuildService)(nil)

// DefaultEmbedWorkers is the default embedding worker pool size.
const DefaultEmbedWorkers = 4

// BuildService coordinates a full index build: crawl, extract, chunk,
// embed, persist. Extraction runs on the crawl goroutine; embedding runs
// on a bounded worker pool; a single collector appends to the store so
// the builder sees one writer.
type BuildService struct {
	connector driven.Connector
	registry  driven.NormaliserRegistry
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	store     driven.IndexStore
	workers   int
}

// NewBuildService creates a new build service.
// workers bounds concurrent embedding calls; zero or negative means the
// default pool size.
func NewBuildService(
	connector driven.Connector,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	workers int,
) *BuildService {
	if workers <= 0 {
		workers = DefaultEmbedWorkers
	}
	return &BuildService{
		connector: connector,
		registry:  registry,
		pipeline:  pipeline,
		embedder:  embedder,
		store:     store,
		workers:   workers,
	}
}

// embedJob is one document's chunks awaiting embedding.
type embedJob struct {
	doc    domain.Document
	chunks []domain.Chunk
}

// embedResult is one document's chunks after embedding.
type embedResult struct {
	doc      domain.Document
	embedded []domain.Chunk
	failed   int
}

// Build crawls the source and commits a new index generation.
// Per-file and per-chunk failures are counted, not fatal; the build
// aborts only on context cancellation or a store failure.
func (s *BuildService) Build(ctx context.Context) (*domain.BuildSummary, error) {
	start := time.Now()

	if err := s.connector.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate source: %w", err)
	}
	if err := s.embedder.Ping(ctx); err != nil {
		return nil, fmt.Errorf("embedding service unavailable: %w", err)
	}

	builder, err := s.store.Begin(ctx, s.embedder.ModelName(), s.embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("begin build: %w", err)
	}

	summary := &domain.BuildSummary{BuildID: uuid.New().String()}
	logger.Info("Starting index build %s", summary.BuildID)

	if err := s.runPipeline(ctx, builder, summary); err != nil {
		if abortErr := builder.Abort(); abortErr != nil {
			logger.Warn("Abort failed: %v", abortErr)
		}
		return nil, err
	}

	summary.Duration = time.Since(start)
	manifest, err := builder.Commit(ctx, *summary)
	if err != nil {
		return nil, fmt.Errorf("commit build: %w", err)
	}

	logger.Info("Build complete: generation %d, %d documents indexed, %d skipped, %d failed, %d chunks",
		manifest.Generation, summary.DocumentsIndexed, summary.DocumentsSkipped,
		summary.DocumentsFailed, summary.ChunksEmbedded)
	return summary, nil
}

// runPipeline wires the crawl loop, the embedding workers and the
// collector together for one build.
func (s *BuildService) runPipeline(ctx context.Context, builder driven.IndexBuilder, summary *domain.BuildSummary) error {
	jobs := make(chan embedJob, s.workers)
	results := make(chan embedResult, s.workers)

	var workerWG sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			s.embedWorker(ctx, jobs, results)
		}()
	}

	// Single collector: the only goroutine that touches the builder.
	// It keeps its own counts; summary is merged after it finishes so the
	// crawl loop and the collector never share counters.
	type collectOutcome struct {
		counts collectCounts
		err    error
	}
	collectorDone := make(chan collectOutcome, 1)
	go func() {
		counts, err := s.collect(ctx, builder, results)
		collectorDone <- collectOutcome{counts: counts, err: err}
	}()

	crawlErr := s.crawl(ctx, jobs, summary)

	close(jobs)
	workerWG.Wait()
	close(results)

	outcome := <-collectorDone
	summary.DocumentsIndexed += outcome.counts.documentsIndexed
	summary.DocumentsFailed += outcome.counts.documentsFailed
	summary.ChunksEmbedded += outcome.counts.chunksEmbedded
	summary.ChunksFailed += outcome.counts.chunksFailed

	if outcome.err != nil {
		return outcome.err
	}
	return crawlErr
}

// crawl consumes the connector's channel pair, normalises and chunks each
// document, and hands chunk batches to the embedding workers.
func (s *BuildService) crawl(ctx context.Context, jobs chan<- embedJob, summary *domain.BuildSummary) error {
	docsCh, errsCh := s.connector.FullCrawl(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			var extErr *domain.ExtractionError
			if errors.As(err, &extErr) {
				logger.Debug("Extraction failed for %s: %v", extErr.Path, extErr.Err)
				summary.DocumentsFailed++
				continue
			}
			return fmt.Errorf("crawl: %w", err)

		case rawDoc, ok := <-docsCh:
			if !ok {
				return nil // Done - channel closed
			}

			logger.Debug("Processing: %s", rawDoc.Path)
			job, outcome := s.prepare(ctx, &rawDoc)
			switch outcome {
			case domain.ExtractionSkipped:
				summary.DocumentsSkipped++
			case domain.ExtractionFailed:
				summary.DocumentsFailed++
			default:
				select {
				case jobs <- *job:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// prepare normalises and chunks one raw document.
func (s *BuildService) prepare(ctx context.Context, raw *domain.RawDocument) (*embedJob, domain.ExtractionStatus) {
	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("No extractor for %s (%s)", raw.Path, raw.MIMEType)
			return nil, domain.ExtractionSkipped
		}
		logger.Debug("Normalise failed for %s: %v", raw.Path, err)
		return nil, domain.ExtractionFailed
	}

	doc := result.Document
	if doc.Content == "" {
		return nil, domain.ExtractionSkipped
	}

	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		logger.Debug("Chunking failed for %s: %v", raw.Path, err)
		return nil, domain.ExtractionFailed
	}
	if len(chunks) == 0 {
		return nil, domain.ExtractionSkipped
	}

	// Records persist chunk text, not the full document body.
	doc.Content = ""
	return &embedJob{doc: doc, chunks: chunks}, domain.ExtractionSucceeded
}

// embedWorker embeds one document's chunks at a time.
// Failed chunks are dropped from the result, not retried here; the
// embedding adapter owns retry policy.
func (s *BuildService) embedWorker(ctx context.Context, jobs <-chan embedJob, results chan<- embedResult) {
	for job := range jobs {
		texts := make([]string, len(job.chunks))
		for i := range job.chunks {
			texts[i] = job.chunks[i].Content
		}

		embeddings, errs := s.embedder.EmbedBatch(ctx, texts)

		res := embedResult{doc: job.doc}
		for i := range job.chunks {
			if errs[i] != nil {
				logger.Debug("Embedding failed for chunk %s: %v", job.chunks[i].ID, errs[i])
				res.failed++
				continue
			}
			chunk := job.chunks[i]
			chunk.Embedding = embeddings[i]
			res.embedded = append(res.embedded, chunk)
		}

		select {
		case results <- res:
		case <-ctx.Done():
			return
		}
	}
}

// collectCounts aggregates the collector's side of the build summary.
type collectCounts struct {
	documentsIndexed int
	documentsFailed  int
	chunksEmbedded   int
	chunksFailed     int
}

// collect appends embedded chunks to the builder and aggregates counts.
func (s *BuildService) collect(ctx context.Context, builder driven.IndexBuilder, results <-chan embedResult) (collectCounts, error) {
	var counts collectCounts

	for res := range results {
		counts.chunksFailed += res.failed

		if len(res.embedded) == 0 {
			// Every chunk of this document failed to embed.
			counts.documentsFailed++
			continue
		}

		for _, chunk := range res.embedded {
			record := domain.IndexRecord{Chunk: chunk, Document: res.doc}
			if err := builder.Append(ctx, record); err != nil {
				// Keep draining so the workers can finish and unblock
				// the crawl loop before the error propagates.
				for range results {
				}
				return counts, fmt.Errorf("append chunk %s: %w", chunk.ID, err)
			}
			counts.chunksEmbedded++
		}
		counts.documentsIndexed++
	}

	return counts, nil
}
