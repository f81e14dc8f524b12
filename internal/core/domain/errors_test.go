package domain

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrIndexNotFound", ErrIndexNotFound},
		{"ErrCorruptedIndex", ErrCorruptedIndex},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrBuildInProgress", ErrBuildInProgress},
		{"ErrEmbeddingFailed", ErrEmbeddingFailed},
		{"ErrGenerationFailed", ErrGenerationFailed},
		{"ErrMalformedResponse", ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrIndexNotFound_DistinctFromCorrupted(t *testing.T) {
	assert.False(t, errors.Is(ErrIndexNotFound, ErrCorruptedIndex))
	assert.False(t, errors.Is(ErrCorruptedIndex, ErrIndexNotFound))
}

func TestErrMalformedResponse_DistinctFromTransport(t *testing.T) {
	assert.False(t, errors.Is(ErrMalformedResponse, ErrGenerationFailed))
	assert.False(t, errors.Is(ErrMalformedResponse, ErrEmbeddingFailed))
}

func TestExtractionError(t *testing.T) {
	t.Run("message includes path and cause", func(t *testing.T) {
		err := &ExtractionError{Path: "/data/broken.txt", Err: os.ErrPermission}

		assert.Contains(t, err.Error(), "/data/broken.txt")
		assert.Contains(t, err.Error(), os.ErrPermission.Error())
	})

	t.Run("unwraps to cause", func(t *testing.T) {
		err := &ExtractionError{Path: "/data/broken.txt", Err: os.ErrPermission}

		assert.True(t, errors.Is(err, os.ErrPermission))

		var extractionErr *ExtractionError
		assert.True(t, errors.As(err, &extractionErr))
		assert.Equal(t, "/data/broken.txt", extractionErr.Path)
	})
}
