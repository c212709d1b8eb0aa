package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsbot-io/docsbot/internal/config"
	"github.com/docsbot-io/docsbot/internal/domain"
	"github.com/docsbot-io/docsbot/internal/storage"
)

// ClearCmd returns the clear command
func ClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all indexed documents",
		Long:  "Delete every chunk from the vector store and any archived originals. Irreversible; re-index to restore",
		RunE:  runClear,
	}

	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	return cmd
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	vectorStore, closeStore, err := openStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeStore()

	before, err := vectorStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	confirmed, _ := cmd.Flags().GetBool("yes")
	if !confirmed {
		fmt.Printf("About to delete %d chunks. Re-run with --yes to confirm.\n", before)
		return nil
	}

	sources, err := vectorStore.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if err := vectorStore.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}

	if cfg.HasS3() {
		clearArchive(ctx, cfg, sources)
	}

	fmt.Printf("Deleted %d chunks\n", before)
	return nil
}

// clearArchive removes the archived originals alongside the index. Failures
// here leave orphaned files at worst, so they only warn.
func clearArchive(ctx context.Context, cfg *config.Config, sources []domain.SourceInfo) {
	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		fmt.Printf("Warning: archived files not removed: %v\n", err)
		return
	}
	for _, src := range sources {
		if err := s3Client.DeleteObject(ctx, src.SourceName); err != nil {
			fmt.Printf("Warning: failed to remove archived %s: %v\n", src.SourceName, err)
		}
	}
}
