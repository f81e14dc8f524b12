package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	assert.Contains(t, normaliser.SupportedMIMETypes(), "text/markdown")
}

func TestNormalise_TitleFromHeading(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		Path:     "/notes/project.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Project Plan\n\nSome **bold** text."),
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Project Plan", doc.Title)
	assert.Equal(t, "Project Plan\n\nSome bold text.", doc.Content)
	assert.Equal(t, domain.DocumentID(raw.Path), doc.ID)
}

func TestNormalise_TitleFallbackToFilename(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		Path:     "/notes/shopping_list.md",
		MIMEType: "text/markdown",
		Content:  []byte("- milk\n- eggs"),
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "shopping list", result.Document.Title)
}

func TestNormalise_NilInput(t *testing.T) {
	normaliser := New()
	_, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "removes code blocks",
			input: "before\n```go\nfunc main() {}\n```\nafter",
			want:  "before\n\nafter",
		},
		{
			name:  "converts links to text",
			input: "see [the docs](https://example.com) here",
			want:  "see the docs here",
		},
		{
			name:  "removes images",
			input: "![diagram](img.png) caption",
			want:  "caption",
		},
		{
			name:  "strips heading markers",
			input: "## Section\ncontent",
			want:  "Section\ncontent",
		},
		{
			name:  "strips list markers",
			input: "- one\n- two\n1. three",
			want:  "one\ntwo\nthree",
		},
		{
			name:  "removes emphasis",
			input: "this is **important** and *subtle*",
			want:  "this is important and subtle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdown(tt.input))
		})
	}
}
