package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.Answerer = (*AnswerService)(nil)

// DefaultTopK is the default number of chunks retrieved per question.
const DefaultTopK = 3

// answerPromptTemplate composes the retrieved chunks and the question
// into one generation prompt.
const answerPromptTemplate = `Answer the question using the following reference material.

Context:
%s

Question: %s

Answer:`

// AnswerService serves retrieval-augmented questions against the index.
// It holds no per-call state; a failed question leaves the service ready
// for the next one.
type AnswerService struct {
	store    driven.IndexStore
	embedder driven.EmbeddingService
	llm      driven.LLMService
	topK     int
	genOpts  driven.GenerateOptions
}

// NewAnswerService creates a new answer service.
// topK bounds retrieval per question; zero or negative means the default.
func NewAnswerService(
	store driven.IndexStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	topK int,
	genOpts driven.GenerateOptions,
) *AnswerService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &AnswerService{
		store:    store,
		embedder: embedder,
		llm:      llm,
		topK:     topK,
		genOpts:  genOpts,
	}
}

// Answer embeds the question, retrieves the top-K chunks, composes a
// prompt and returns the generated reply. An empty index still produces
// an answer, generated without reference material.
func (s *AnswerService) Answer(ctx context.Context, question string) (string, error) {
	result, err := s.Retrieve(ctx, question, s.topK)
	if err != nil {
		return "", err
	}

	prompt := composePrompt(result.ChunkTexts(), question)
	logger.Debug("Generating answer with %d retrieved chunks", len(result.Records))

	answer, err := s.llm.Generate(ctx, prompt, s.genOpts)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	return strings.TrimSpace(answer), nil
}

// Retrieve runs only the retrieval stage for a question.
func (s *AnswerService) Retrieve(ctx context.Context, question string, topK int) (domain.QueryResult, error) {
	if topK <= 0 {
		return domain.QueryResult{}, fmt.Errorf("top-k %d: %w", topK, domain.ErrInvalidInput)
	}
	if strings.TrimSpace(question) == "" {
		return domain.QueryResult{}, fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}

	index, err := s.store.Load(ctx)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("load index: %w", err)
	}
	if index.Empty() {
		return domain.QueryResult{}, nil
	}

	queryEmbedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("embed question: %w", err)
	}
	if len(queryEmbedding) != index.Manifest.Dimensions {
		return domain.QueryResult{}, fmt.Errorf("query embedding has %d dimensions, index has %d: %w",
			len(queryEmbedding), index.Manifest.Dimensions, domain.ErrDimensionMismatch)
	}

	return domain.QueryResult{
		Records: rankRecords(index.Records, queryEmbedding, topK),
	}, nil
}

// composePrompt renders the prompt template with newline-joined chunk
// texts in ranked order.
func composePrompt(texts []string, question string) string {
	return fmt.Sprintf(answerPromptTemplate, strings.Join(texts, "\n"), question)
}
