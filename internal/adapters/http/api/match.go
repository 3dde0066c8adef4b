package api

import (
	"net/http"

	"github.com/okian/polo/internal/domain/model"
)

// MatchHandler serves the scoresheet header and the scoreboard.
type MatchHandler struct {
	deps Dependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps Dependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// HandleScoreboard handles GET /scoreboard.
func (h *MatchHandler) HandleScoreboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Scoreboard(r.Context()))
}

// HandleMatch handles GET and PUT /match.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Match(r.Context()))
	case http.MethodPut:
		var m model.Match
		if err := decodeJSON(w, r, "set match", &m); err != nil {
			writeFailure(w, err)
			return
		}
		board, err := h.deps.SetMatch(r.Context(), m)
		if err != nil {
			writeFailure(w, Wrap("set match", err))
			return
		}
		writeJSON(w, http.StatusOK, board)
	default:
		http.NotFound(w, r)
	}
}

// HandleReset handles POST /reset. The UI asks for confirmation first.
func (h *MatchHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	board, err := h.deps.Reset(r.Context())
	if err != nil {
		writeFailure(w, Wrap("reset", err))
		return
	}
	writeJSON(w, http.StatusOK, board)
}
