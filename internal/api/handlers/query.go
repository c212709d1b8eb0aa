// Package handlers contains the HTTP handlers for the direct query surface.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/docsbot-io/docsbot/internal/api"
	"github.com/docsbot-io/docsbot/internal/service"
)

// QueryAnswerer is the answering contract the query endpoint depends on.
type QueryAnswerer interface {
	Answer(ctx context.Context, question string) (*service.Answer, error)
}

// QueryHandler serves POST /query, the synchronous HTTP alternative to the
// Slack surface.
type QueryHandler struct {
	answerer QueryAnswerer
}

func NewQueryHandler(answerer QueryAnswerer) *QueryHandler {
	return &QueryHandler{answerer: answerer}
}

type queryRequest struct {
	Question string `json:"question"`
}

type queryDocument struct {
	Filename   string  `json:"filename"`
	Similarity float64 `json:"similarity"`
	Link       string  `json:"link,omitempty"`
}

type queryResponse struct {
	Answer          string          `json:"answer"`
	HasRelevantDocs bool            `json:"hasRelevantDocs"`
	DocumentCount   int             `json:"documentCount"`
	Documents       []queryDocument `json:"documents"`
}

func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.answerer.Answer(r.Context(), req.Question)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	docs := make([]queryDocument, 0, len(answer.Documents))
	for _, doc := range answer.Documents {
		docs = append(docs, queryDocument{
			Filename:   doc.SourceName,
			Similarity: doc.BestSimilarity,
			Link:       doc.ExternalLink,
		})
	}

	api.JSON(w, http.StatusOK, queryResponse{
		Answer:          answer.Text,
		HasRelevantDocs: answer.HasRelevantDocs,
		DocumentCount:   len(answer.Documents),
		Documents:       docs,
	})
}
