package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsbot-io/docsbot/internal/config"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show vector store status",
		Long:  "Report store reachability and the number of indexed chunks and documents",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	if err := vectorStore.Ping(ctx); err != nil {
		return fmt.Errorf("vector store unreachable: %w", err)
	}

	count, err := vectorStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	sources, err := vectorStore.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	fmt.Printf("Store: reachable\nDocuments: %d\nChunks: %d\n", len(sources), count)
	return nil
}
