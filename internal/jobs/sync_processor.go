package jobs

import (
	"context"
	"log"

	"github.com/docsbot-io/docsbot/internal/service"
)

// SyncProcessor re-indexes the documents directory on every worker tick, so
// edits to files on disk reach the index without a restart. Queries keep
// running against the store while a sync is in flight; upserts are atomic per
// chunk, so readers see either the old or the new content.
type SyncProcessor struct {
	indexer *service.Indexer
	docsDir string
}

func NewSyncProcessor(indexer *service.Indexer, docsDir string) *SyncProcessor {
	return &SyncProcessor{indexer: indexer, docsDir: docsDir}
}

// ProcessJobs implements JobProcessor.
func (p *SyncProcessor) ProcessJobs(ctx context.Context) error {
	summary, err := p.indexer.IndexDirectory(ctx, p.docsDir)
	if err != nil {
		return err
	}
	if summary.Skipped > 0 {
		log.Printf("Document sync finished with %d skipped files", summary.Skipped)
	}
	return nil
}
