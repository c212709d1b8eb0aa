package service

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/docsbot-io/docsbot/internal/domain"
	"github.com/docsbot-io/docsbot/internal/store"
)

// overfetchFactor controls how many chunks are pulled per requested document
// so that enough distinct sources survive grouping.
const overfetchFactor = 20

// Retriever answers "which documents are relevant to this question". It only
// reads the store; all failures degrade to an empty result because the caller
// treats "no documents" as a valid answer state, not an error.
type Retriever struct {
	store    store.VectorStore
	embedder Embedder
}

func NewRetriever(vs store.VectorStore, embedder Embedder) *Retriever {
	return &Retriever{store: vs, embedder: embedder}
}

// FindRelevant embeds the question, over-fetches nearest chunks, groups them
// by source keeping each source's best (minimum) distance, drops sources
// below similarityThreshold, ranks ascending by distance and caps at
// maxDocuments. Each surviving source is reassembled from all of its chunks,
// not just the ones the nearest-neighbor query happened to return.
func (r *Retriever) FindRelevant(ctx context.Context, question string, maxDocuments int, similarityThreshold float64) []domain.RetrievedDocument {
	if maxDocuments <= 0 {
		maxDocuments = 3
	}

	queryVector, err := r.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		log.Printf("Retrieval degraded to empty: embedding failed: %v", err)
		return nil
	}

	scored, err := r.store.Nearest(ctx, queryVector, maxDocuments*overfetchFactor)
	if err != nil {
		log.Printf("Retrieval degraded to empty: nearest query failed: %v", err)
		return nil
	}

	type sourceMatch struct {
		name     string
		distance float64
	}

	best := make(map[string]float64)
	var order []string
	for _, sc := range scored {
		d, seen := best[sc.Chunk.SourceName]
		if !seen {
			best[sc.Chunk.SourceName] = sc.Distance
			order = append(order, sc.Chunk.SourceName)
			continue
		}
		if sc.Distance < d {
			best[sc.Chunk.SourceName] = sc.Distance
		}
	}

	matches := make([]sourceMatch, 0, len(order))
	for _, name := range order {
		// A non-positive threshold is the fallback pass: accept every
		// source, even one whose similarity is negative.
		if similarityThreshold > 0 && 1-best[name] < similarityThreshold {
			continue
		}
		matches = append(matches, sourceMatch{name: name, distance: best[name]})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})
	if len(matches) > maxDocuments {
		matches = matches[:maxDocuments]
	}

	var docs []domain.RetrievedDocument
	for _, m := range matches {
		chunks, err := r.store.ChunksBySource(ctx, m.name)
		if err != nil {
			log.Printf("Retrieval skipping %s: reassembly failed: %v", m.name, err)
			continue
		}
		if len(chunks) == 0 {
			continue
		}

		parts := make([]string, len(chunks))
		for i, c := range chunks {
			parts[i] = c.Content
		}

		docs = append(docs, domain.RetrievedDocument{
			SourceName:     m.name,
			FullContent:    strings.Join(parts, "\n\n"),
			BestSimilarity: 1 - m.distance,
			ChunkCount:     len(chunks),
			ExternalLink:   chunks[0].ExternalLink,
		})
	}

	return docs
}
