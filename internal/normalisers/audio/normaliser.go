// Package audio extracts searchable text from audio files. Audio has no
// text body, so the extracted content is the embedded tag metadata rendered
// as "key: value" lines.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
	"github.com/custodia-labs/recall-cli/internal/core/ports/driven"
	"github.com/custodia-labs/recall-cli/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles audio documents via their embedded tags.
type Normaliser struct{}

// New creates a new audio normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"audio/mpeg", "audio/mp3"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format-specific normaliser
}

// Normalise renders the file's tag metadata as text. Files without
// readable tags still produce a minimal body naming the file, so every
// crawled audio file appears in the index.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title := plaintext.TitleFromPath(raw.Path)
	content := fallbackContent(raw.Path)

	meta, err := tag.ReadFrom(bytes.NewReader(raw.Content))
	if err == nil {
		if rendered := renderTags(meta); rendered != "" {
			content = rendered
		}
		if meta.Title() != "" {
			title = meta.Title()
		}
	}

	doc := domain.Document{
		ID:       domain.DocumentID(raw.Path),
		Path:     raw.Path,
		Title:    title,
		MIMEType: raw.MIMEType,
		Content:  content,
		Status:   domain.ExtractionSucceeded,
		ModTime:  raw.ModTime,
		Metadata: raw.Metadata,
	}

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// renderTags formats the known tag fields as one "key: value" line each.
// Empty fields are omitted.
func renderTags(meta tag.Metadata) string {
	fields := []struct {
		key   string
		value string
	}{
		{"title", meta.Title()},
		{"artist", meta.Artist()},
		{"album", meta.Album()},
		{"genre", meta.Genre()},
		{"composer", meta.Composer()},
	}

	var lines []string
	for _, field := range fields {
		if field.value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", field.key, field.value))
		}
	}
	if year := meta.Year(); year != 0 {
		lines = append(lines, fmt.Sprintf("year: %d", year))
	}

	return strings.Join(lines, "\n")
}

// fallbackContent is the minimal body for files without readable tags.
func fallbackContent(path string) string {
	return fmt.Sprintf("audio file: %s", filepath.Base(path))
}
