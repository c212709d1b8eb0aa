package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docsbot-io/docsbot/internal/domain"
	"github.com/docsbot-io/docsbot/internal/store/snapshot"
)

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) ArchiveDocument(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestIndexer_IndexDirectory_LoadsTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "guide.md", "how to deploy")
	writeDoc(t, dir, "notes.txt", "meeting notes")
	writeDoc(t, dir, "image.png", "not text")

	vs := new(MockVectorStore)
	embedder := new(MockEmbedder)
	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil)

	var upserted []domain.DocumentChunk
	vs.On("UpsertChunk", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		upserted = append(upserted, *args.Get(1).(*domain.DocumentChunk))
	}).Return(nil)
	vs.On("PruneSource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	summary, err := NewIndexer(vs, embedder, nil).IndexDirectory(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, IndexSummary{Loaded: 2, Skipped: 0}, summary)
	require.Len(t, upserted, 2)
	for _, c := range upserted {
		assert.Empty(t, c.ChunkLabel, "unsplit documents keep an empty label")
		assert.Zero(t, c.ChunkIndex)
	}
}

func TestIndexer_IndexDirectory_SplitsLargeDocuments(t *testing.T) {
	dir := t.TempDir()
	big := ""
	for i := 0; i < 2000; i++ {
		big += "deployment procedure step detail "
	}
	writeDoc(t, dir, "big.md", big)

	vs := new(MockVectorStore)
	embedder := new(MockEmbedder)
	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil)

	var upserted []domain.DocumentChunk
	vs.On("UpsertChunk", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		upserted = append(upserted, *args.Get(1).(*domain.DocumentChunk))
	}).Return(nil)
	vs.On("PruneSource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	summary, err := NewIndexer(vs, embedder, nil).IndexDirectory(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Loaded)
	require.Greater(t, len(upserted), 1)
	for i, c := range upserted {
		assert.Equal(t, "big.md", c.SourceName)
		assert.NotEmpty(t, c.ChunkLabel, "split documents get numbered labels")
		assert.Equal(t, i, c.ChunkIndex)
	}
}

func TestIndexer_IndexDirectory_EmbeddingFailureSkipsFileNotBatch(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bad.md", "fails to embed")
	writeDoc(t, dir, "good.md", "embeds fine")

	vs := new(MockVectorStore)
	embedder := new(MockEmbedder)
	embedder.On("GenerateEmbedding", mock.Anything, "fails to embed").Return(nil, errors.New("rate limited"))
	embedder.On("GenerateEmbedding", mock.Anything, "embeds fine").Return([]float32{1, 0, 0}, nil)
	vs.On("UpsertChunk", mock.Anything, mock.Anything).Return(nil)
	vs.On("PruneSource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	summary, err := NewIndexer(vs, embedder, nil).IndexDirectory(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, IndexSummary{Loaded: 1, Skipped: 1}, summary)
}

func TestIndexer_IndexDirectory_EmptyFileSkipped(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "empty.txt", "   \n")

	vs := new(MockVectorStore)
	embedder := new(MockEmbedder)

	summary, err := NewIndexer(vs, embedder, nil).IndexDirectory(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, IndexSummary{Loaded: 0, Skipped: 1}, summary)
}

func TestIndexer_IndexDirectory_MissingDirectory(t *testing.T) {
	vs := new(MockVectorStore)
	embedder := new(MockEmbedder)

	_, err := NewIndexer(vs, embedder, nil).IndexDirectory(context.Background(), "/nonexistent/docs")

	assert.Error(t, err)
}

func newSnapshotStore(t *testing.T) *snapshot.Store {
	t.Helper()
	s, err := snapshot.Open(filepath.Join(t.TempDir(), "embeddings.json"), "test-model", 3)
	require.NoError(t, err)
	return s
}

func TestIndexer_IndexDirectory_TwicePreservesCount(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "guide.md", "how to deploy")
	writeDoc(t, dir, "notes.txt", "meeting notes")

	vs := newSnapshotStore(t)
	embedder := new(MockEmbedder)
	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil)
	indexer := NewIndexer(vs, embedder, nil)
	ctx := context.Background()

	_, err := indexer.IndexDirectory(ctx, dir)
	require.NoError(t, err)
	first, err := vs.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, first)

	_, err = indexer.IndexDirectory(ctx, dir)
	require.NoError(t, err)
	second, err := vs.Count(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-indexing an unchanged directory must not grow the store")
}

func TestIndexer_IndexDirectory_ReindexDropsStaleChunks(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "guide.md", strings.Repeat("legacy deployment procedure step detail ", 2000))

	vs := newSnapshotStore(t)
	embedder := new(MockEmbedder)
	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil)
	indexer := NewIndexer(vs, embedder, nil)
	ctx := context.Background()

	_, err := indexer.IndexDirectory(ctx, dir)
	require.NoError(t, err)
	before, err := vs.ChunksBySource(ctx, "guide.md")
	require.NoError(t, err)
	require.Greater(t, len(before), 1, "document must split before the edit")

	// The document shrinks back to a single chunk with the empty label;
	// nothing from the first pass may survive.
	writeDoc(t, dir, "guide.md", "use the new deploy pipeline")
	_, err = indexer.IndexDirectory(ctx, dir)
	require.NoError(t, err)

	after, err := vs.ChunksBySource(ctx, "guide.md")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Empty(t, after[0].ChunkLabel)
	assert.Equal(t, "use the new deploy pipeline", after[0].Content)

	count, err := vs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexer_IndexDirectory_ArchiveLinkCarriedToChunks(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "guide.md", "how to deploy")

	vs := new(MockVectorStore)
	embedder := new(MockEmbedder)
	archive := new(MockArchive)
	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil)
	archive.On("ArchiveDocument", mock.Anything, "guide.md", mock.Anything).Return("https://files.example.com/guide.md", nil)

	var upserted *domain.DocumentChunk
	vs.On("UpsertChunk", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		upserted = args.Get(1).(*domain.DocumentChunk)
	}).Return(nil)
	vs.On("PruneSource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := NewIndexer(vs, embedder, archive).IndexDirectory(context.Background(), dir)

	require.NoError(t, err)
	require.NotNil(t, upserted)
	assert.Equal(t, "https://files.example.com/guide.md", upserted.ExternalLink)
}

func TestIndexer_IndexDirectory_ArchiveFailureDoesNotSkipFile(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "guide.md", "how to deploy")

	vs := new(MockVectorStore)
	embedder := new(MockEmbedder)
	archive := new(MockArchive)
	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil)
	archive.On("ArchiveDocument", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket unavailable"))
	vs.On("UpsertChunk", mock.Anything, mock.Anything).Return(nil)
	vs.On("PruneSource", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	summary, err := NewIndexer(vs, embedder, archive).IndexDirectory(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, IndexSummary{Loaded: 1, Skipped: 0}, summary)
}
