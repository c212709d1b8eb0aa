package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the indexed documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	return cmd
}

type askResponse struct {
	Answer          string `json:"answer"`
	HasRelevantDocs bool   `json:"hasRelevantDocs"`
	DocumentCount   int    `json:"documentCount"`
	Documents       []struct {
		Filename   string  `json:"filename"`
		Similarity float64 `json:"similarity"`
		Link       string  `json:"link,omitempty"`
	} `json:"documents"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	apiClient, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")

	var resp askResponse
	if err := apiClient.Post("/query", map[string]string{"question": question}, &resp); err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	if !resp.HasRelevantDocs {
		fmt.Println("\n(no relevant documents matched this question)")
	}
	return nil
}
