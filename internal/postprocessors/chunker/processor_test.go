package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	p := New()
	doc := &domain.Document{
		ID:      "abc123",
		Content: "",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestProcessor_Process_SmallContent(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{
		ID:      "abc123",
		Content: "short content",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "short content" {
		t.Errorf("unexpected chunk content: %q", chunks[0].Content)
	}
	if chunks[0].StartOffset != 0 || chunks[0].EndOffset != len(doc.Content) {
		t.Errorf("unexpected offsets: [%d, %d)", chunks[0].StartOffset, chunks[0].EndOffset)
	}
}

func TestProcessor_Process_Overlap(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(4))
	doc := &domain.Document{
		ID:      "abc123",
		Content: "abcdefghijklmnopqrstuvwxyz",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		cur := chunks[i]
		if cur.StartOffset != prev.StartOffset+6 {
			t.Errorf("chunk %d: expected stride 6, got start %d after %d", i, cur.StartOffset, prev.StartOffset)
		}
		tail := prev.Content[len(prev.Content)-4:]
		if !strings.HasPrefix(cur.Content, tail) {
			t.Errorf("chunk %d does not overlap previous: %q vs %q", i, cur.Content, prev.Content)
		}
	}
}

func TestProcessor_Process_DeterministicIDs(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2))
	doc := &domain.Document{
		ID:      "abc123",
		Content: strings.Repeat("x", 35),
	}

	first, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d: IDs differ: %s vs %s", i, first[i].ID, second[i].ID)
		}
		if first[i].ID != domain.ChunkID(doc.ID, i) {
			t.Errorf("chunk %d: unexpected ID %s", i, first[i].ID)
		}
	}
}

func TestProcessor_Process_CoversAllContent(t *testing.T) {
	p := New(WithChunkSize(7), WithOverlap(3))
	doc := &domain.Document{
		ID:      "abc123",
		Content: "the quick brown fox jumps over the lazy dog",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	last := chunks[len(chunks)-1]
	if last.EndOffset != len(doc.Content) {
		t.Errorf("final chunk ends at %d, content length %d", last.EndOffset, len(doc.Content))
	}
	for i, c := range chunks {
		if doc.Content[c.StartOffset:c.EndOffset] != c.Content {
			t.Errorf("chunk %d content does not match its offsets", i)
		}
	}
}

func TestProcessor_Process_MultibyteBoundaries(t *testing.T) {
	t.Run("boundary never splits a rune", func(t *testing.T) {
		// 4 ASCII bytes then a 2-byte rune straddling the chunk boundary.
		p := New(WithChunkSize(5), WithOverlap(0))
		doc := &domain.Document{
			ID:      "abc123",
			Content: "aaaaébbbb",
		}

		chunks, err := p.Process(context.Background(), doc, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, chunk := range chunks {
			if !utf8.ValidString(chunk.Content) {
				t.Errorf("chunk %s is not valid UTF-8: %q", chunk.ID, chunk.Content)
			}
		}
	})

	t.Run("zero overlap keeps full coverage", func(t *testing.T) {
		p := New(WithChunkSize(7), WithOverlap(0))
		content := strings.Repeat("éü", 20)
		doc := &domain.Document{
			ID:      "abc123",
			Content: content,
		}

		chunks, err := p.Process(context.Background(), doc, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var joined strings.Builder
		for _, chunk := range chunks {
			if !utf8.ValidString(chunk.Content) {
				t.Errorf("chunk %s is not valid UTF-8: %q", chunk.ID, chunk.Content)
			}
			joined.WriteString(chunk.Content)
		}
		if joined.String() != content {
			t.Errorf("concatenated chunks differ from content: %q", joined.String())
		}
	})

	t.Run("offsets stay on rune starts", func(t *testing.T) {
		p := New(WithChunkSize(10), WithOverlap(3))
		content := strings.Repeat("日本語", 10) // 3-byte runes
		doc := &domain.Document{
			ID:      "abc123",
			Content: content,
		}

		chunks, err := p.Process(context.Background(), doc, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, chunk := range chunks {
			if chunk.StartOffset < len(content) && !utf8.RuneStart(content[chunk.StartOffset]) {
				t.Errorf("chunk %s starts mid-rune at offset %d", chunk.ID, chunk.StartOffset)
			}
			if chunk.EndOffset < len(content) && !utf8.RuneStart(content[chunk.EndOffset]) {
				t.Errorf("chunk %s ends mid-rune at offset %d", chunk.ID, chunk.EndOffset)
			}
		}
	})
}
