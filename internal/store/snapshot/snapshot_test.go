package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsbot-io/docsbot/internal/domain"
)

const testModel = "text-embedding-3-small"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "embeddings.json")
	s, err := Open(path, testModel, 3)
	require.NoError(t, err)
	return s
}

func chunk(source, label string, index int, vec []float32) *domain.DocumentChunk {
	return &domain.DocumentChunk{
		SourceName: source,
		ChunkLabel: label,
		ChunkIndex: index,
		Content:    source + " content " + label,
		Embedding:  vec,
	}
}

func TestStore_UpsertAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunk(ctx, chunk("a.txt", "", 0, []float32{1, 0, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("b.txt", "", 0, []float32{0, 1, 0})))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_Upsert_OverwritesSameKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunk(ctx, chunk("a.txt", "", 0, []float32{1, 0, 0})))
	first, err := s.ChunksBySource(ctx, "a.txt")
	require.NoError(t, err)
	require.Len(t, first, 1)

	updated := chunk("a.txt", "", 0, []float32{0, 0, 1})
	updated.Content = "updated content"
	require.NoError(t, s.UpsertChunk(ctx, updated))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "upsert on the same key must not create a duplicate")

	after, err := s.ChunksBySource(ctx, "a.txt")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "updated content", after[0].Content)
	assert.Equal(t, first[0].ID, after[0].ID)
	assert.Equal(t, first[0].CreatedAt, after[0].CreatedAt)
	assert.False(t, after[0].UpdatedAt.Before(first[0].UpdatedAt))
}

func TestStore_Upsert_DistinctChunkLabels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunk(ctx, chunk("a.txt", "1", 0, []float32{1, 0, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("a.txt", "2", 1, []float32{0, 1, 0})))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_Nearest_OrderedByDistance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunk(ctx, chunk("far.txt", "", 0, []float32{0, 1, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("close.txt", "", 0, []float32{1, 0.1, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("exact.txt", "", 0, []float32{1, 0, 0})))

	results, err := s.Nearest(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "exact.txt", results[0].Chunk.SourceName)
	assert.Equal(t, "close.txt", results[1].Chunk.SourceName)
	assert.Equal(t, "far.txt", results[2].Chunk.SourceName)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance,
			"distances must be non-decreasing")
	}
	assert.InDelta(t, 0.0, results[0].Distance, 1e-6)
}

func TestStore_Nearest_RespectsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, s.UpsertChunk(ctx, chunk(name, "", 0, []float32{1, 0, 0})))
	}

	results, err := s.Nearest(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestStore_Nearest_EmptyStore(t *testing.T) {
	s := newTestStore(t)

	results, err := s.Nearest(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	ctx := context.Background()

	s, err := Open(path, testModel, 3)
	require.NoError(t, err)
	require.NoError(t, s.UpsertChunk(ctx, chunk("a.txt", "", 0, []float32{1, 0, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("b.txt", "1", 0, []float32{0, 1, 0})))

	reopened, err := Open(path, testModel, 3)
	require.NoError(t, err)

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	chunks, err := reopened.ChunksBySource(ctx, "a.txt")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a.txt content ", chunks[0].Content)

	// New inserts must not reuse IDs from the previous run.
	require.NoError(t, reopened.UpsertChunk(ctx, chunk("c.txt", "", 0, []float32{0, 0, 1})))
	cChunks, err := reopened.ChunksBySource(ctx, "c.txt")
	require.NoError(t, err)
	require.Len(t, cChunks, 1)
	assert.Greater(t, cChunks[0].ID, chunks[0].ID)
}

func TestOpen_RejectsModelMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	ctx := context.Background()

	s, err := Open(path, testModel, 3)
	require.NoError(t, err)
	require.NoError(t, s.UpsertChunk(ctx, chunk("a.txt", "", 0, []float32{1, 0, 0})))

	_, err = Open(path, "text-embedding-ada-002", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelMismatch)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeStore, domainErr.Code)
}

func TestStore_Upsert_RejectsWrongDimension(t *testing.T) {
	s := newTestStore(t)

	err := s.UpsertChunk(context.Background(), chunk("a.txt", "", 0, []float32{1, 0}))
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_PruneSource_DropsLabelsNotKept(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunk(ctx, chunk("doc.md", "0", 0, []float32{1, 0, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("doc.md", "1", 1, []float32{0, 1, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("doc.md", "2", 2, []float32{0, 0, 1})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("other.md", "", 0, []float32{1, 1, 0})))

	require.NoError(t, s.PruneSource(ctx, "doc.md", []string{"0", "1"}))

	chunks, err := s.ChunksBySource(ctx, "doc.md")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "0", chunks[0].ChunkLabel)
	assert.Equal(t, "1", chunks[1].ChunkLabel)

	// Other sources are untouched.
	others, err := s.ChunksBySource(ctx, "other.md")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestStore_PruneSource_EmptyKeepRemovesSource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunk(ctx, chunk("doc.md", "0", 0, []float32{1, 0, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("doc.md", "1", 1, []float32{0, 1, 0})))

	require.NoError(t, s.PruneSource(ctx, "doc.md", nil))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_PruneSource_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	ctx := context.Background()

	s, err := Open(path, testModel, 3)
	require.NoError(t, err)
	require.NoError(t, s.UpsertChunk(ctx, chunk("doc.md", "0", 0, []float32{1, 0, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("doc.md", "1", 1, []float32{0, 1, 0})))
	require.NoError(t, s.PruneSource(ctx, "doc.md", []string{"0"}))

	reopened, err := Open(path, testModel, 3)
	require.NoError(t, err)
	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_ListSources(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunk(ctx, chunk("old.txt", "", 0, []float32{1, 0, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("split.txt", "1", 0, []float32{0, 1, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("split.txt", "2", 1, []float32{0, 0, 1})))

	sources, err := s.ListSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 2, "chunks of one source collapse to one entry")

	// split.txt was touched last, so it sorts first.
	assert.Equal(t, "split.txt", sources[0].SourceName)
	assert.Equal(t, "old.txt", sources[1].SourceName)
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertChunk(ctx, chunk("a.txt", "", 0, []float32{1, 0, 0})))
	require.NoError(t, s.Clear(ctx))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	results, err := s.Nearest(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_ChunksBySource_Order(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Insert out of order; reassembly must follow ChunkIndex.
	require.NoError(t, s.UpsertChunk(ctx, chunk("doc.md", "2", 2, []float32{0, 0, 1})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("doc.md", "0", 0, []float32{1, 0, 0})))
	require.NoError(t, s.UpsertChunk(ctx, chunk("doc.md", "1", 1, []float32{0, 1, 0})))

	chunks, err := s.ChunksBySource(ctx, "doc.md")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{chunks[0].ChunkIndex, chunks[1].ChunkIndex, chunks[2].ChunkIndex})
}
