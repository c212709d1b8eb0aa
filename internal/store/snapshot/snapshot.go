// Package snapshot implements the vector store as a single JSON file held in
// memory and scanned linearly on every query. Suitable for corpora up to a
// few thousand chunks; beyond that use the postgres backend.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/docsbot-io/docsbot/internal/domain"
)

// Store keeps all chunks in memory guarded by a RWMutex and rewrites the
// snapshot file atomically (temp file + rename) after every mutation, so a
// concurrent reader never observes a torn row.
type Store struct {
	mu     sync.RWMutex
	path   string
	model  string
	dims   int
	nextID int64
	chunks []domain.DocumentChunk
}

type snapshotFile struct {
	EmbeddingModel string          `json:"embedding_model"`
	Dimensions     int             `json:"dimensions"`
	Chunks         []snapshotChunk `json:"chunks"`
}

type snapshotChunk struct {
	ID           int64     `json:"id"`
	SourceName   string    `json:"source_name"`
	ChunkLabel   string    `json:"chunk_label,omitempty"`
	ChunkIndex   int       `json:"chunk_index"`
	Content      string    `json:"content"`
	Embedding    []float32 `json:"embedding"`
	ExternalLink string    `json:"external_link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Open loads the snapshot at path, creating an empty store when the file does
// not exist. A snapshot written with a different embedding model is rejected;
// re-index the corpus instead of mixing vector spaces.
func Open(path, embeddingModel string, dimensions int) (*Store, error) {
	s := &Store{
		path:   path,
		model:  embeddingModel,
		dims:   dimensions,
		nextID: 1,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, domain.NewStoreError("failed to read snapshot", err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, domain.NewStoreError("failed to parse snapshot", err)
	}

	if file.EmbeddingModel != "" && file.EmbeddingModel != embeddingModel {
		return nil, fmt.Errorf("%w (snapshot %q, configured %q)",
			domain.ErrModelMismatch, file.EmbeddingModel, embeddingModel)
	}

	for _, sc := range file.Chunks {
		s.chunks = append(s.chunks, domain.DocumentChunk(sc))
		if sc.ID >= s.nextID {
			s.nextID = sc.ID + 1
		}
	}
	return s, nil
}

// UpsertChunk inserts or overwrites the chunk keyed by (SourceName,
// ChunkLabel) and rewrites the snapshot file.
func (s *Store) UpsertChunk(ctx context.Context, chunk *domain.DocumentChunk) error {
	if err := domain.ValidateChunk(chunk); err != nil {
		return err
	}
	if s.dims > 0 && len(chunk.Embedding) != s.dims {
		return domain.ErrDimensionMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for i := range s.chunks {
		if s.chunks[i].SourceName == chunk.SourceName && s.chunks[i].ChunkLabel == chunk.ChunkLabel {
			s.chunks[i].Content = chunk.Content
			s.chunks[i].ChunkIndex = chunk.ChunkIndex
			s.chunks[i].Embedding = chunk.Embedding
			s.chunks[i].ExternalLink = chunk.ExternalLink
			s.chunks[i].UpdatedAt = now
			return s.persistLocked()
		}
	}

	stored := *chunk
	stored.ID = s.nextID
	s.nextID++
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.chunks = append(s.chunks, stored)
	return s.persistLocked()
}

// PruneSource drops the source's chunks whose label is not in keepLabels and
// rewrites the snapshot if anything changed.
func (s *Store) PruneSource(ctx context.Context, sourceName string, keepLabels []string) error {
	keep := make(map[string]bool, len(keepLabels))
	for _, l := range keepLabels {
		keep[l] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]domain.DocumentChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		if c.SourceName == sourceName && !keep[c.ChunkLabel] {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == len(s.chunks) {
		return nil
	}
	s.chunks = kept
	return s.persistLocked()
}

// Nearest scans every stored chunk and returns up to limit results by
// ascending cosine distance. Ties keep insertion order.
func (s *Store) Nearest(ctx context.Context, vector []float32, limit int) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]domain.ScoredChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		scored = append(scored, domain.ScoredChunk{
			Chunk:    c,
			Distance: 1 - cosineSimilarity(vector, c.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// ChunksBySource returns all chunks of one document in chunk order.
func (s *Store) ChunksBySource(ctx context.Context, sourceName string) ([]domain.DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.DocumentChunk
	for _, c := range s.chunks {
		if c.SourceName == sourceName {
			chunks = append(chunks, c)
		}
	}
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
	return chunks, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// ListSources returns one entry per logical document, updated_at descending.
func (s *Store) ListSources(ctx context.Context) ([]domain.SourceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bySource := make(map[string]*domain.SourceInfo)
	var order []string
	for _, c := range s.chunks {
		info, ok := bySource[c.SourceName]
		if !ok {
			bySource[c.SourceName] = &domain.SourceInfo{
				SourceName: c.SourceName,
				CreatedAt:  c.CreatedAt,
				UpdatedAt:  c.UpdatedAt,
			}
			order = append(order, c.SourceName)
			continue
		}
		if c.CreatedAt.Before(info.CreatedAt) {
			info.CreatedAt = c.CreatedAt
		}
		if c.UpdatedAt.After(info.UpdatedAt) {
			info.UpdatedAt = c.UpdatedAt
		}
	}

	sources := make([]domain.SourceInfo, 0, len(order))
	for _, name := range order {
		sources = append(sources, *bySource[name])
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].UpdatedAt.After(sources[j].UpdatedAt)
	})
	return sources, nil
}

// Clear deletes all chunks and rewrites the snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	return s.persistLocked()
}

// Ping verifies the snapshot directory is writable.
func (s *Store) Ping(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil {
		return domain.NewStoreError("snapshot directory unavailable", err)
	}
	return nil
}

func (s *Store) persistLocked() error {
	file := snapshotFile{
		EmbeddingModel: s.model,
		Dimensions:     s.dims,
		Chunks:         make([]snapshotChunk, len(s.chunks)),
	}
	for i, c := range s.chunks {
		file.Chunks[i] = snapshotChunk(c)
	}

	data, err := json.Marshal(file)
	if err != nil {
		return domain.NewStoreError("failed to encode snapshot", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return domain.NewStoreError("failed to write snapshot", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return domain.NewStoreError("failed to replace snapshot", err)
	}
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
