package domain

import (
	"fmt"
	"time"
)

// DocumentChunk is the persisted unit of indexed text. A whole document is a
// single chunk with an empty ChunkLabel; a split document stores one chunk
// per segment, all sharing the same SourceName.
type DocumentChunk struct {
	ID           int64
	SourceName   string
	ChunkLabel   string
	ChunkIndex   int
	Content      string
	Embedding    []float32
	ExternalLink string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Key returns the identity of a chunk within the store. (SourceName,
// ChunkLabel) is unique; the label is empty for whole-document entries.
func (c *DocumentChunk) Key() string {
	if c.ChunkLabel == "" {
		return c.SourceName
	}
	return c.SourceName + "#" + c.ChunkLabel
}

// ScoredChunk pairs a stored chunk with its cosine distance to a query
// vector. Distance is 1 - cosine similarity, so lower is closer.
type ScoredChunk struct {
	Chunk    DocumentChunk
	Distance float64
}

// Similarity converts the distance back to a similarity score.
func (s ScoredChunk) Similarity() float64 {
	return 1 - s.Distance
}

// RetrievedDocument is a query-time reassembly of all chunks that share a
// source, ranked by the best-matching chunk. Never persisted.
type RetrievedDocument struct {
	SourceName     string
	FullContent    string
	BestSimilarity float64
	ChunkCount     int
	ExternalLink   string
}

// SourceInfo describes one indexed logical document.
type SourceInfo struct {
	SourceName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateChunk validates a DocumentChunk before it is written.
func ValidateChunk(c *DocumentChunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}
	if c.SourceName == "" {
		return ErrEmptySource
	}
	if c.Content == "" {
		return ErrEmptyContent
	}
	if len(c.Embedding) == 0 {
		return fmt.Errorf("chunk embedding is required")
	}
	return nil
}
