package handlers

import (
	"net/http"

	appMiddleware "github.com/osezele-ek/MiniDrive/internal/api/middlewares"
	"github.com/osezele-ek/MiniDrive/internal/services"
)

type SearchHandler struct {
	search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Query ranks the user's files by semantic similarity to the q parameter.
// Embedding-provider failures are reported as errors, never as an empty
// result set.
func (h *SearchHandler) Query(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	results, err := h.search.Search(r.Context(), userID, query)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []services.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
