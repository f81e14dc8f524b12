// Package connectors groups implementations of the Connector port.
// The filesystem connector is the only built-in source; external text
// producers (OCR output, speech transcripts) can implement the same
// port and feed the build pipeline.
package connectors
