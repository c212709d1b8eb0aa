// Package store defines the vector store contract shared by the postgres and
// snapshot backends.
package store

import (
	"context"

	"github.com/docsbot-io/docsbot/internal/domain"
)

// VectorStore persists document chunks with their embeddings and answers
// nearest-neighbor queries by cosine distance. Backends only guarantee the
// top-k-by-increasing-distance contract; tie order between equal distances is
// backend-dependent.
type VectorStore interface {
	// UpsertChunk inserts the chunk or, when a row with the same
	// (SourceName, ChunkLabel) key exists, overwrites its content and
	// embedding and bumps UpdatedAt. Atomic per key.
	UpsertChunk(ctx context.Context, chunk *domain.DocumentChunk) error

	// Nearest returns up to limit chunks ordered by ascending cosine
	// distance to the query vector.
	Nearest(ctx context.Context, vector []float32, limit int) ([]domain.ScoredChunk, error)

	// PruneSource deletes the source's chunks whose ChunkLabel is not in
	// keepLabels. Run after re-indexing a document so that a changed chunk
	// count (including the split/whole-file transition) leaves no stale
	// rows behind. An empty keepLabels removes the source entirely.
	PruneSource(ctx context.Context, sourceName string, keepLabels []string) error

	// ChunksBySource returns every chunk of one logical document in chunk
	// order, for full-document reassembly.
	ChunksBySource(ctx context.Context, sourceName string) ([]domain.DocumentChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// ListSources returns one entry per logical document, most recently
	// updated first.
	ListSources(ctx context.Context) ([]domain.SourceInfo, error)

	// Clear deletes all rows. Irreversible.
	Clear(ctx context.Context) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
