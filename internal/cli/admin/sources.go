package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsbot-io/docsbot/internal/config"
)

// SourcesCmd returns the sources command
func SourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List indexed documents",
		Long:  "List every indexed document with creation and last-update timestamps, most recently updated first",
		RunE:  runSources,
	}
}

func runSources(cmd *cobra.Command, args []string) error {
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

	sources, err := vectorStore.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		fmt.Println("No documents indexed")
		return nil
	}

	for _, src := range sources {
		fmt.Printf("%s\tcreated %s\tupdated %s\n",
			src.SourceName,
			src.CreatedAt.Format("2006-01-02 15:04"),
			src.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return nil
}
