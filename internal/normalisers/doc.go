// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// Normalisers are registered with the Registry at startup. Dispatch is by
// MIME type with priority ties broken in favour of the higher priority.
package normalisers
