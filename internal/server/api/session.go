package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
)

// SessionHandler exposes the session state and its commands.
type SessionHandler struct {
	app *app.App
	now func() time.Time
}

// NewSessionHandler creates a new SessionHandler for a.
func NewSessionHandler(a *app.App) *SessionHandler {
	return &SessionHandler{app: a, now: time.Now}
}

// ServeHTTP routes /api/session and /api/session/commands.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/session")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.app.Engine().Snapshot())
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

type commandRequest struct {
	Command string `json:"command"`
	Value   string `json:"value,omitempty"`
}

// command handles POST /api/session/commands. Besides the session commands,
// "set-language" and "set-mode" select a value directly.
func (h *SessionHandler) command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	engine := h.app.Engine()
	switch req.Command {
	case "set-language":
		lang, err := gesture.ParseLanguage(req.Value)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		engine.SetLanguage(lang)
		writeJSON(w, http.StatusOK, engine.Snapshot())
		return
	case "set-mode":
		mode, err := gesture.ParseMode(req.Value)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		engine.SetMode(mode)
		writeJSON(w, http.StatusOK, engine.Snapshot())
		return
	}

	cmd, err := session.ParseCommand(req.Command)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := h.app.Apply(cmd, h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// landmarksRequest is a hand as sent by clients that run detection
// themselves.
type landmarksRequest struct {
	Points     []detector.Point3D `json:"points"`
	Handedness string             `json:"handedness"`
	Score      float64            `json:"score"`
}

func (l *landmarksRequest) hand() (*detector.HandLandmarks, error) {
	h, err := detector.FromPoints(l.Points, l.Handedness, l.Score)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// FramesHandler accepts one hand observation per request and runs it
// through the pipeline.
type FramesHandler struct {
	app *app.App
	now func() time.Time
}

// NewFramesHandler creates a new FramesHandler for a.
func NewFramesHandler(a *app.App) *FramesHandler {
	return &FramesHandler{app: a, now: time.Now}
}

type frameRequest struct {
	// Hand is null when no hand was detected in the frame.
	Hand *landmarksRequest `json:"hand"`
}

// ServeHTTP handles POST /api/frames.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req frameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var hand *detector.HandLandmarks
	if req.Hand != nil {
		var err error
		hand, err = req.Hand.hand()
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, detector.ErrMalformedLandmarks) {
				status = http.StatusUnprocessableEntity
			}
			writeError(w, status, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, h.app.Submit(hand, h.now()))
}
