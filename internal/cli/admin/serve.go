package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsbot-io/docsbot/internal/api/handlers"
	"github.com/docsbot-io/docsbot/internal/config"
	"github.com/docsbot-io/docsbot/internal/jobs"
	"github.com/docsbot-io/docsbot/internal/openai"
	"github.com/docsbot-io/docsbot/internal/server"
	"github.com/docsbot-io/docsbot/internal/service"
	"github.com/docsbot-io/docsbot/internal/slack"
	"github.com/docsbot-io/docsbot/internal/storage"
	"github.com/docsbot-io/docsbot/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the bot server",
		Long:  "Start the docsbot HTTP server: Slack event webhook, query endpoint, health and sources",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-index", false, "Skip indexing the documents directory on startup")

	return cmd
}

// applyPortFlag lets an explicitly set --port win over the environment, even
// when it equals the flag default.
func applyPortFlag(cmd *cobra.Command, cfg *config.Config) {
	if !cmd.Flags().Changed("port") {
		return
	}
	if port, err := cmd.Flags().GetString("port"); err == nil && port != "" {
		cfg.Port = port
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.SentryTracesSampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	applyPortFlag(cmd, cfg)

	if !cfg.HasOpenAI() {
		return fmt.Errorf("DOCSBOT_OPENAI_API_KEY is required")
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	vectorStore, closeStore, err := openStore(ctx, cfg, !noMigrate)
	if err != nil {
		return err
	}
	defer closeStore()

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:          cfg.OpenAIAPIKey,
		EmbeddingModel:  cfg.EmbeddingModel,
		CompletionModel: cfg.CompletionModel,
	})

	var archive service.LinkArchive
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		archive = s3Client
	}

	indexer := service.NewIndexer(vectorStore, aiClient, archive)

	noIndex, _ := cmd.Flags().GetBool("no-index")
	if !noIndex {
		if _, err := indexer.IndexDirectory(ctx, cfg.DocsDir); err != nil {
			log.Printf("startup indexing failed (continuing with existing index): %v", err)
		}
	}

	if count, err := vectorStore.Count(ctx); err == nil {
		log.Printf("vector store ready with %d document chunks", count)
	}

	var syncWorker *jobs.Worker
	if cfg.SyncInterval > 0 {
		syncWorker = jobs.NewWorker(jobs.NewSyncProcessor(indexer, cfg.DocsDir), cfg.SyncInterval)
		go syncWorker.Start(ctx)
		log.Printf("document sync worker started (interval %v)", cfg.SyncInterval)
	}

	retriever := service.NewRetriever(vectorStore, aiClient)
	composer := service.NewComposer(retriever, aiClient, cfg.MaxDocuments, cfg.SimilarityThreshold)

	var dispatcher *slack.Dispatcher
	if cfg.HasSlack() {
		slackClient := slack.NewClient(cfg.SlackBotToken, cfg.SlackAPIURL)
		dispatcher = slack.NewDispatcher(composer, slackClient)
		log.Println("slack event dispatcher enabled")
	} else {
		log.Println("DOCSBOT_SLACK_BOT_TOKEN not set, slack surface disabled")
	}

	router := server.NewRouter(server.RouterConfig{
		QueryHandler:   handlers.NewQueryHandler(composer),
		HealthHandler:  handlers.NewHealthHandler(vectorStore),
		SourcesHandler: handlers.NewSourcesHandler(vectorStore),
		Dispatcher:     dispatcher,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if syncWorker != nil {
		syncWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
