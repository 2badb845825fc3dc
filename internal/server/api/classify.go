package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
)

// ClassifyHandler classifies a single hand without touching session state.
type ClassifyHandler struct {
	app *app.App
}

// NewClassifyHandler creates a new ClassifyHandler. The session's language
// and mode select the primary result.
func NewClassifyHandler(a *app.App) *ClassifyHandler {
	return &ClassifyHandler{app: a}
}

type classifyRequest struct {
	landmarksRequest
	// Fingers may be sent instead of points, as five binary digits.
	Fingers string `json:"fingers,omitempty"`
}

type classifyResponse struct {
	Fingers gesture.FingerState   `json:"fingers"`
	Symbol  gesture.Symbol        `json:"symbol"`
	Tables  []gesture.TableResult `json:"tables"`
}

// ServeHTTP handles POST /api/classify.
func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req classifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var fs gesture.FingerState
	if req.Fingers != "" {
		var err error
		if fs, err = gesture.ParseFingerState(req.Fingers); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		hand, err := req.hand()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		fs = gesture.ExtractFingerState(hand)
	}

	st := h.app.Engine().State()
	writeJSON(w, http.StatusOK, classifyResponse{
		Fingers: fs,
		Symbol:  gesture.Classify(fs, st.Mode, st.Language),
		Tables:  gesture.ClassifyAll(fs),
	})
}

// TablesHandler serves the rule tables.
type TablesHandler struct{}

// NewTablesHandler creates a new TablesHandler.
func NewTablesHandler() *TablesHandler {
	return &TablesHandler{}
}

// RuleView is one rule as shown to clients.
type RuleView struct {
	Index    int                 `json:"index"`
	Pattern  gesture.FingerState `json:"pattern"`
	Symbol   gesture.Symbol      `json:"symbol"`
	Shadowed bool                `json:"shadowed"`
}

type tableResponse struct {
	Language gesture.Language `json:"language"`
	Mode     gesture.Mode     `json:"mode"`
	Rules    []RuleView       `json:"rules"`
}

// Rules returns the rules of a table with unreachable duplicates marked.
func Rules(t gesture.RuleTable) []RuleView {
	dead := make(map[int]bool)
	for _, i := range t.Shadowed() {
		dead[i] = true
	}
	out := make([]RuleView, len(t))
	for i, r := range t {
		out[i] = RuleView{Index: i, Pattern: r.Pattern, Symbol: r.Symbol, Shadowed: dead[i]}
	}
	return out
}

// ServeHTTP handles GET /api/tables/{lang}/{mode}.
func (h *TablesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tables"), "/"), "/")
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "Expected /api/tables/{lang}/{mode}")
		return
	}

	lang, err := gesture.ParseLanguage(parts[0])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	mode, err := gesture.ParseMode(parts[1])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tableResponse{
		Language: lang,
		Mode:     mode,
		Rules:    Rules(gesture.Table(lang, mode)),
	})
}
