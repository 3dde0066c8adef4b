package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/okian/polo/internal/domain/model"
)

// SnapshotHandler serves the persistence snapshot round-trip.
type SnapshotHandler struct {
	deps Dependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps Dependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

// HandleSnapshot handles GET and PUT /snapshot. PUT replaces the whole
// scoresheet.
func (h *SnapshotHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Snapshot(r.Context()))
	case http.MethodPut:
		var snap model.Snapshot
		if err := decodeJSON(w, r, "restore snapshot", &snap); err != nil {
			writeFailure(w, err)
			return
		}
		board, err := h.deps.Restore(r.Context(), snap)
		if err != nil {
			writeFailure(w, Wrap("restore snapshot", err))
			return
		}
		writeJSON(w, http.StatusOK, board)
	default:
		http.NotFound(w, r)
	}
}

// HandleLegacy handles POST /snapshot/legacy with a state document saved by
// the browser-only scorer.
func (h *SnapshotHandler) HandleLegacy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, WrapKind("import legacy", ErrBodyTooLarge, err))
			return
		}
		writeFailure(w, WrapKind("import legacy", ErrBadRequest, err))
		return
	}
	board, err := h.deps.ImportLegacy(r.Context(), data)
	if err != nil {
		writeFailure(w, Wrap("import legacy", err))
		return
	}
	writeJSON(w, http.StatusOK, board)
}
