package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsbot-io/docsbot/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docsbot",
		Short: "Docsbot CLI - ask questions against your document index",
		Long: `Docsbot CLI talks to a running docsbotd server.

Environment variables:
  DOCSBOT_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.SourcesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
