package api

import "net/http"

// KeypadHandler previews keypad input on the clock display.
type KeypadHandler struct {
	deps Dependencies
}

// NewKeypadHandler creates a new keypad handler.
func NewKeypadHandler(deps Dependencies) *KeypadHandler {
	return &KeypadHandler{deps: deps}
}

// HandleKeypad handles GET /keypad?digits=. An invalid buffer is still a 200;
// the preview carries the error.
func (h *KeypadHandler) HandleKeypad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.PreviewKeypad(r.URL.Query().Get("digits")))
}
