package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	SentryDSN              string  `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE" default:"1.0"`

	// Vector store: postgres when DATABASE_URL is set, otherwise the
	// JSON snapshot file.
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	SnapshotPath string `envconfig:"SNAPSHOT_PATH" default:"embeddings.json"`

	DocsDir      string        `envconfig:"DOCS_DIR" default:"docs"`
	SyncInterval time.Duration `envconfig:"SYNC_INTERVAL" default:"0"`

	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	CompletionModel string `envconfig:"COMPLETION_MODEL" default:"gpt-4o-mini"`

	SlackBotToken string `envconfig:"SLACK_BOT_TOKEN"`
	SlackAPIURL   string `envconfig:"SLACK_API_URL" default:"https://slack.com/api"`

	MaxDocuments        int     `envconfig:"MAX_DOCUMENTS" default:"3"`
	SimilarityThreshold float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.6"`

	// Optional archive of original files; presigned links end up in citations.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"docsbot-sources"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCSBOT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) HasPostgres() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSlack() bool {
	return c.SlackBotToken != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
