// Package postgres implements the vector store on PostgreSQL with pgvector.
// Nearest-neighbor queries use the `<=>` cosine distance operator backed by
// an ivfflat index, so results are approximate but sub-linear.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/docsbot-io/docsbot/internal/domain"
)

// Store persists document chunks in the documents table.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// UpsertChunk inserts or updates the row keyed by (source_name, chunk_label).
// ON CONFLICT makes the detect-then-write atomic per key; concurrent writers
// on the same key resolve to last-write-wins.
func (s *Store) UpsertChunk(ctx context.Context, chunk *domain.DocumentChunk) error {
	if err := domain.ValidateChunk(chunk); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (source_name, chunk_label, chunk_index, content, embedding, external_link, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 ON CONFLICT (source_name, chunk_label) DO UPDATE
		 SET content = EXCLUDED.content,
		     chunk_index = EXCLUDED.chunk_index,
		     embedding = EXCLUDED.embedding,
		     external_link = EXCLUDED.external_link,
		     updated_at = EXCLUDED.updated_at`,
		chunk.SourceName,
		chunk.ChunkLabel,
		chunk.ChunkIndex,
		chunk.Content,
		pgvector.NewVector(chunk.Embedding),
		nullableString(chunk.ExternalLink),
		now,
	)
	if err != nil {
		return domain.NewStoreError("failed to upsert chunk", err)
	}
	return nil
}

// PruneSource deletes the source's rows whose chunk_label is not in
// keepLabels.
func (s *Store) PruneSource(ctx context.Context, sourceName string, keepLabels []string) error {
	if keepLabels == nil {
		keepLabels = []string{}
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE source_name = $1 AND chunk_label <> ALL($2)`,
		sourceName, keepLabels,
	)
	if err != nil {
		return domain.NewStoreError("failed to prune source", err)
	}
	return nil
}

// Nearest returns up to limit chunks ordered by ascending cosine distance.
func (s *Store) Nearest(ctx context.Context, vector []float32, limit int) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		limit = 10
	}

	vec := pgvector.NewVector(vector)
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_name, chunk_label, chunk_index, content, external_link, created_at, updated_at,
		        embedding <=> $1 AS distance
		 FROM documents
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, limit,
	)
	if err != nil {
		return nil, domain.NewStoreError("nearest query failed", err)
	}
	defer rows.Close()

	var results []domain.ScoredChunk
	for rows.Next() {
		var sc domain.ScoredChunk
		var label, link *string
		if err := rows.Scan(
			&sc.Chunk.ID, &sc.Chunk.SourceName, &label, &sc.Chunk.ChunkIndex,
			&sc.Chunk.Content, &link, &sc.Chunk.CreatedAt, &sc.Chunk.UpdatedAt,
			&sc.Distance,
		); err != nil {
			return nil, domain.NewStoreError("failed to scan nearest row", err)
		}
		if label != nil {
			sc.Chunk.ChunkLabel = *label
		}
		if link != nil {
			sc.Chunk.ExternalLink = *link
		}
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("nearest rows failed", err)
	}
	return results, nil
}

// ChunksBySource returns all chunks of one document in chunk order.
func (s *Store) ChunksBySource(ctx context.Context, sourceName string) ([]domain.DocumentChunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_name, chunk_label, chunk_index, content, external_link, created_at, updated_at
		 FROM documents
		 WHERE source_name = $1
		 ORDER BY chunk_index, id`,
		sourceName,
	)
	if err != nil {
		return nil, domain.NewStoreError("chunks query failed", err)
	}
	defer rows.Close()

	var chunks []domain.DocumentChunk
	for rows.Next() {
		var c domain.DocumentChunk
		var label, link *string
		if err := rows.Scan(&c.ID, &c.SourceName, &label, &c.ChunkIndex, &c.Content, &link, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, domain.NewStoreError("failed to scan chunk row", err)
		}
		if label != nil {
			c.ChunkLabel = *label
		}
		if link != nil {
			c.ExternalLink = *link
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("chunk rows failed", err)
	}
	return chunks, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	if err != nil {
		return 0, domain.NewStoreError("count query failed", err)
	}
	return count, nil
}

// ListSources returns one entry per logical document, updated_at descending.
func (s *Store) ListSources(ctx context.Context) ([]domain.SourceInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_name, MIN(created_at), MAX(updated_at)
		 FROM documents
		 GROUP BY source_name
		 ORDER BY MAX(updated_at) DESC`,
	)
	if err != nil {
		return nil, domain.NewStoreError("list sources query failed", err)
	}
	defer rows.Close()

	var sources []domain.SourceInfo
	for rows.Next() {
		var info domain.SourceInfo
		if err := rows.Scan(&info.SourceName, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, domain.NewStoreError("failed to scan source row", err)
		}
		sources = append(sources, info)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("source rows failed", err)
	}
	return sources, nil
}

// Clear deletes all rows.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents`); err != nil {
		return domain.NewStoreError("clear failed", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return domain.NewStoreError("database unreachable", err)
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
