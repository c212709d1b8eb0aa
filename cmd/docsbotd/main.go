package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsbot-io/docsbot/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docsbotd",
		Short: "Docsbot daemon and admin CLI",
		Long:  "Docsbot daemon for serving the Slack bot and query API, and for managing the document index",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IndexCmd())
	rootCmd.AddCommand(admin.SourcesCmd())
	rootCmd.AddCommand(admin.StatusCmd())
	rootCmd.AddCommand(admin.ClearCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
