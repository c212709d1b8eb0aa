package handlers

import (
	"net/http"
	"time"

	"github.com/docsbot-io/docsbot/internal/api"
	"github.com/docsbot-io/docsbot/internal/store"
)

// HealthHandler serves GET /health. Healthy means the vector store answers a
// ping; the document count is included so operators can spot an empty index.
type HealthHandler struct {
	store     store.VectorStore
	startedAt time.Time
}

func NewHealthHandler(vs store.VectorStore) *HealthHandler {
	return &HealthHandler{store: vs, startedAt: time.Now()}
}

type healthResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime,omitempty"`
	DocumentsLoaded int    `json:"documentsLoaded"`
	Error           string `json:"error,omitempty"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		api.JSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "unhealthy",
			Error:  "vector store unreachable",
		})
		return
	}

	count, err := h.store.Count(r.Context())
	if err != nil {
		api.JSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "unhealthy",
			Error:  "vector store unreachable",
		})
		return
	}

	api.JSON(w, http.StatusOK, healthResponse{
		Status:          "healthy",
		Uptime:          time.Since(h.startedAt).Round(time.Second).String(),
		DocumentsLoaded: count,
	})
}
