package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/practice"
	"github.com/ayusman/mudra/internal/store"
)

// PracticeHandler controls the letter drill.
type PracticeHandler struct {
	app *app.App
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(a *app.App) *PracticeHandler {
	return &PracticeHandler{app: a}
}

type practiceResponse struct {
	practice.Status
	History *store.PracticeSummary `json:"history,omitempty"`
}

// ServeHTTP routes /api/practice and /api/practice/commands.
func (h *PracticeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/practice"), "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.status(w)
	case "commands":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.command(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *PracticeHandler) status(w http.ResponseWriter) {
	resp := practiceResponse{Status: h.app.Drill().Status()}
	if s := h.app.Store(); s != nil {
		if sum, err := s.Practice().Summary(string(resp.Language)); err == nil {
			resp.History = &sum
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PracticeHandler) command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch req.Command {
	case "start":
		h.app.StartPractice()
	case "stop":
		h.app.StopPractice()
	case "skip":
		h.app.Drill().Skip()
	default:
		writeError(w, http.StatusBadRequest, "Unknown practice command")
		return
	}
	h.status(w)
}
