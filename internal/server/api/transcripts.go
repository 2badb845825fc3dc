package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/store"
)

// TranscriptHandler saves and serves copies of the accumulated text.
type TranscriptHandler struct {
	app   *app.App
	store *store.Store
}

// NewTranscriptHandler creates a new TranscriptHandler.
func NewTranscriptHandler(a *app.App, s *store.Store) *TranscriptHandler {
	return &TranscriptHandler{app: a, store: s}
}

// ServeHTTP routes /api/transcripts and /api/transcripts/{id}.
func (h *TranscriptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/transcripts"), "/")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type listTranscriptsResponse struct {
	Transcripts []*store.Transcript `json:"transcripts"`
}

type createTranscriptResponse struct {
	*store.Transcript
	Commits int64 `json:"commits"`
}

// list handles GET /api/transcripts.
func (h *TranscriptHandler) list(w http.ResponseWriter, r *http.Request) {
	ts, err := h.store.Transcripts().List(queryLimit(r, 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transcripts")
		return
	}
	if ts == nil {
		ts = []*store.Transcript{}
	}
	writeJSON(w, http.StatusOK, listTranscriptsResponse{Transcripts: ts})
}

// create handles POST /api/transcripts. It saves the current text and links
// the commits made since the previous save.
func (h *TranscriptHandler) create(w http.ResponseWriter, r *http.Request) {
	snap := h.app.Engine().Snapshot()
	if snap.Text == "" {
		writeError(w, http.StatusBadRequest, "Nothing to save")
		return
	}

	t := &store.Transcript{
		Language: string(snap.Session.Language),
		Mode:     string(snap.Session.Mode),
		Text:     snap.Text,
	}
	if err := h.store.Transcripts().Create(t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save transcript")
		return
	}

	n, err := h.store.Commits().AttachUnassigned(t.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to link commits")
		return
	}

	writeJSON(w, http.StatusCreated, createTranscriptResponse{Transcript: t, Commits: n})
}

// get handles GET /api/transcripts/{id}.
func (h *TranscriptHandler) get(w http.ResponseWriter, id string) {
	t, err := h.store.Transcripts().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Transcript not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get transcript")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type updateTranscriptRequest struct {
	Text string `json:"text"`
}

// update handles PUT /api/transcripts/{id}, replacing the saved text.
func (h *TranscriptHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req updateTranscriptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	t, err := h.store.Transcripts().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Transcript not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get transcript")
		return
	}

	t.Text = req.Text
	if err := h.store.Transcripts().Update(t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update transcript")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// delete handles DELETE /api/transcripts/{id}.
func (h *TranscriptHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Transcripts().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Transcript not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete transcript")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
