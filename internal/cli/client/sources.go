package client

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// SourcesCmd returns the sources command
func SourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the documents the server has indexed",
		RunE:  runSources,
	}
}

type sourcesResponse struct {
	Count   int `json:"count"`
	Sources []struct {
		Filename  string    `json:"filename"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	} `json:"sources"`
}

func runSources(cmd *cobra.Command, args []string) error {
	apiClient, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp sourcesResponse
	if err := apiClient.Get("/sources", &resp); err != nil {
		return err
	}

	if resp.Count == 0 {
		fmt.Println("No documents indexed")
		return nil
	}

	for _, src := range resp.Sources {
		fmt.Printf("%s\tupdated %s\n", src.Filename, src.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
