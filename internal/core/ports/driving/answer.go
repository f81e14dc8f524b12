package driving

import (
	"context"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// Answerer serves retrieval-augmented questions against a built index.
// A front end calls Answer and renders the returned text; failures are
// typed so callers can distinguish "no index", "model unreachable" and
// "malformed response".
type Answerer interface {
	// Answer embeds the question, retrieves the top-K chunks, composes a
	// prompt and returns the generation service's reply. One failed call
	// must not affect subsequent calls.
	Answer(ctx context.Context, question string) (string, error)

	// Retrieve runs only the retrieval stage, returning the ranked records
	// for a question without invoking the generation service.
	Retrieve(ctx context.Context, question string, topK int) (domain.QueryResult, error)
}
