package domain

import "time"

// RawDocument represents opaque bytes fetched by a connector.
// It is the connector's output before normalisation.
type RawDocument struct {
	// Path is the absolute location of the source file.
	Path string

	// MIMEType is the content type guessed from the file extension
	// (e.g. "text/plain", "audio/mpeg").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// ModTime is the file's last-modified timestamp.
	ModTime time.Time

	// Metadata contains connector-specific key-value pairs.
	Metadata map[string]any
}
