// Package localindex provides the on-disk implementation of the IndexStore
// port. One index location is a directory holding three structures:
//
//   - content.db: chunk text and document metadata in SQLite
//   - vectors.bin: embeddings as little-endian float32, keyed by chunk ID
//   - manifest.json: generation metadata
//
// The SQLite side uses modernc.org/sqlite, a pure Go implementation that
// requires no CGO. Schema changes are versioned .up.sql migrations in the
// migrations/ directory, applied on open.
//
// # Build protocol
//
// Builds are single-writer. Begin takes an exclusive flock on the location;
// a second process gets ErrBuildInProgress. Staged records are written to a
// hidden staging directory and renamed into place on Commit, with the
// manifest renamed last, so readers see either the previous generation or
// the new one, never a mix. Aborted builds leave the previous generation
// untouched.
//
// # Load validation
//
// The three structures are cross-validated on load. A chunk without a
// vector, a vector without a chunk, or counts disagreeing with the
// manifest is ErrCorruptedIndex. A location without a manifest is
// ErrIndexNotFound.
package localindex
