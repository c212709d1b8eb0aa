package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsbot-io/docsbot/internal/config"
	"github.com/docsbot-io/docsbot/internal/openai"
	"github.com/docsbot-io/docsbot/internal/service"
)

// IndexCmd returns the index command
func IndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Index a directory of documents",
		Long:  "Embed every recognized text file in the directory and write the chunks to the vector store",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIndex,
	}

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("DOCSBOT_OPENAI_API_KEY is required")
	}

	dir := cfg.DocsDir
	if len(args) == 1 {
		dir = args[0]
	}

	vectorStore, closeStore, err := openStore(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeStore()

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: cfg.EmbeddingModel,
	})

	summary, err := service.NewIndexer(vectorStore, aiClient, nil).IndexDirectory(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d documents from %s (%d skipped)\n", summary.Loaded, dir, summary.Skipped)
	return nil
}
