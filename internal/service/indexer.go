package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docsbot-io/docsbot/internal/domain"
	"github.com/docsbot-io/docsbot/internal/store"
)

// Embedder turns text into a fixed-dimension vector. The same model must be
// used for indexing and querying.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// LinkArchive stores the original file somewhere external and returns a link
// to it, carried through to answer citations.
type LinkArchive interface {
	ArchiveDocument(ctx context.Context, name string, data []byte) (string, error)
}

var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// IndexSummary reports the outcome of one directory pass.
type IndexSummary struct {
	Loaded  int
	Skipped int
}

// Indexer reads text documents from disk, embeds them and writes chunks to
// the vector store. It is the sole writer; files are processed strictly
// sequentially to bound the outbound embedding rate.
type Indexer struct {
	store    store.VectorStore
	embedder Embedder
	archive  LinkArchive
	chunking ChunkConfig
}

func NewIndexer(vs store.VectorStore, embedder Embedder, archive LinkArchive) *Indexer {
	return &Indexer{
		store:    vs,
		embedder: embedder,
		archive:  archive,
		chunking: DefaultChunkConfig(),
	}
}

// IndexDirectory indexes every recognized text file directly under dir. A
// failing file is logged and skipped; the batch continues. The returned error
// is only non-nil when the directory itself cannot be read.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string) (IndexSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IndexSummary{}, fmt.Errorf("failed to read documents directory %s: %w", dir, err)
	}

	var summary IndexSummary
	for _, entry := range entries {
		if entry.IsDir() || !textExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := idx.indexFile(ctx, dir, entry.Name()); err != nil {
			log.Printf("Skipping %s: %v", entry.Name(), err)
			summary.Skipped++
			continue
		}
		summary.Loaded++
	}

	log.Printf("Indexed %d documents, skipped %d", summary.Loaded, summary.Skipped)
	return summary, nil
}

func (idx *Indexer) indexFile(ctx context.Context, dir, name string) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return fmt.Errorf("file is empty")
	}

	externalLink := ""
	if idx.archive != nil {
		link, err := idx.archive.ArchiveDocument(ctx, name, data)
		if err != nil {
			// The archive is a convenience; the document still gets indexed.
			log.Printf("Failed to archive %s: %v", name, err)
		} else {
			externalLink = link
		}
	}

	parts := splitDocument(content, idx.chunking)
	labels := make([]string, len(parts))
	for i, part := range parts {
		label := ""
		if len(parts) > 1 {
			label = strconv.Itoa(i)
		}
		labels[i] = label

		embedding, err := idx.embedder.GenerateEmbedding(ctx, part)
		if err != nil {
			return domain.NewProviderError("failed to embed document chunk", err)
		}

		chunk := &domain.DocumentChunk{
			SourceName:   name,
			ChunkLabel:   label,
			ChunkIndex:   i,
			Content:      part,
			Embedding:    embedding,
			ExternalLink: externalLink,
		}
		if err := idx.store.UpsertChunk(ctx, chunk); err != nil {
			return err
		}
	}

	// A shrunk or re-merged document leaves chunks from the previous pass
	// behind; they would be concatenated into reassembled answers.
	if err := idx.store.PruneSource(ctx, name, labels); err != nil {
		return err
	}

	return nil
}
