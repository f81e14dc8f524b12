package normalisers

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to the best matching normaliser.
type Registry struct {
	byMIMEType map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIMEType: make(map[string][]driven.Normaliser),
	}
}

// Register adds a normaliser for each of its supported MIME types.
// Candidates for a MIME type are kept sorted by descending priority.
func (r *Registry) Register(normaliser driven.Normaliser) {
	for _, mimeType := range normaliser.SupportedMIMETypes() {
		candidates := append(r.byMIMEType[mimeType], normaliser)
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Priority() > candidates[j].Priority()
		})
		r.byMIMEType[mimeType] = candidates
	}
}

// Normalise transforms a raw document using the highest-priority normaliser
// registered for its MIME type. An unregistered MIME type is ErrNotFound,
// which callers record as a skipped document rather than a failure.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	candidates := r.byMIMEType[raw.MIMEType]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no normaliser for %s: %w", raw.MIMEType, domain.ErrNotFound)
	}

	return candidates[0].Normalise(ctx, raw)
}

// SupportedMIMETypes returns all MIME types that can be normalised,
// sorted for stable output.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byMIMEType))
	for mimeType := range r.byMIMEType {
		types = append(types, mimeType)
	}
	sort.Strings(types)
	return types
}
