package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

// createID3v1 builds an audio payload with an ID3v1 trailer.
func createID3v1(title, artist, album, year string) []byte {
	pad := func(s string, n int) []byte {
		b := make([]byte, n)
		copy(b, s)
		return b
	}

	data := make([]byte, 0, 256)
	data = append(data, make([]byte, 128)...) // fake audio frames
	data = append(data, []byte("TAG")...)
	data = append(data, pad(title, 30)...)
	data = append(data, pad(artist, 30)...)
	data = append(data, pad(album, 30)...)
	data = append(data, pad(year, 4)...)
	data = append(data, make([]byte, 30)...) // comment
	data = append(data, 255)                 // genre: none
	return data
}

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	assert.Contains(t, normaliser.SupportedMIMETypes(), "audio/mpeg")
}

func TestNormalise_TaggedFile(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		Path:     "/music/song.mp3",
		MIMEType: "audio/mpeg",
		Content:  createID3v1("Autumn Leaves", "Bill Evans", "Portrait in Jazz", "1960"),
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.Equal(t, domain.DocumentID(raw.Path), doc.ID)
	assert.Equal(t, "Autumn Leaves", doc.Title)
	assert.Contains(t, doc.Content, "title: Autumn Leaves")
	assert.Contains(t, doc.Content, "artist: Bill Evans")
	assert.Contains(t, doc.Content, "album: Portrait in Jazz")
	assert.Equal(t, domain.ExtractionSucceeded, doc.Status)
}

func TestNormalise_UntaggedFileFallsBack(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	raw := &domain.RawDocument{
		Path:     "/music/untitled_jam.mp3",
		MIMEType: "audio/mpeg",
		Content:  []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00},
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "audio file: untitled_jam.mp3", doc.Content)
	assert.Equal(t, "untitled jam", doc.Title)
	assert.Equal(t, domain.ExtractionSucceeded, doc.Status)
}

func TestNormalise_NilInput(t *testing.T) {
	normaliser := New()
	_, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
