package handlers

import (
	"net/http"
	"time"

	"github.com/docsbot-io/docsbot/internal/api"
	"github.com/docsbot-io/docsbot/internal/store"
)

// SourcesHandler serves GET /sources, listing every indexed document.
type SourcesHandler struct {
	store store.VectorStore
}

func NewSourcesHandler(vs store.VectorStore) *SourcesHandler {
	return &SourcesHandler{store: vs}
}

type sourceEntry struct {
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type sourcesResponse struct {
	Count   int           `json:"count"`
	Sources []sourceEntry `json:"sources"`
}

func (h *SourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.store.ListSources(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sources := make([]sourceEntry, 0, len(infos))
	for _, info := range infos {
		sources = append(sources, sourceEntry{
			Filename:  info.SourceName,
			CreatedAt: info.CreatedAt,
			UpdatedAt: info.UpdatedAt,
		})
	}

	api.JSON(w, http.StatusOK, sourcesResponse{
		Count:   len(sources),
		Sources: sources,
	})
}
