package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// CommitsHandler serves the commit log.
type CommitsHandler struct {
	store *store.Store
}

// NewCommitsHandler creates a new CommitsHandler.
func NewCommitsHandler(s *store.Store) *CommitsHandler {
	return &CommitsHandler{store: s}
}

type commitsResponse struct {
	Commits []*store.Commit     `json:"commits"`
	Counts  []store.SymbolCount `json:"counts,omitempty"`
}

// ServeHTTP handles GET /api/commits. With ?language=EN|AR the response also
// carries per-symbol counts for that language.
func (h *CommitsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	commits, err := h.store.Commits().Recent(queryLimit(r, 100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list commits")
		return
	}
	resp := commitsResponse{Commits: commits}
	if resp.Commits == nil {
		resp.Commits = []*store.Commit{}
	}

	if q := r.URL.Query().Get("language"); q != "" {
		lang, err := gesture.ParseLanguage(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if resp.Counts, err = h.store.Commits().Counts(string(lang)); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to count commits")
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
