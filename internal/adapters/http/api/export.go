package api

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/okian/polo/internal/domain/export"
)

// ExportHandler serves the CSV download.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleExport handles GET /export.csv?locale=en|ja. Without a locale the
// configured default is used.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	loc := h.deps.Locale()
	if name := r.URL.Query().Get("locale"); name != "" {
		l, err := export.LookupLocale(name)
		if err != nil {
			writeFailure(w, Wrap("export", err))
			return
		}
		loc = l
	}

	filename, data, err := h.deps.ExportCSV(r.Context(), loc)
	if err != nil {
		writeFailure(w, Wrap("export", err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
