// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/polo/internal/app"
	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/export"
	"github.com/okian/polo/internal/domain/model"
	"github.com/okian/polo/internal/domain/views"
)

// maxBodyBytes bounds request bodies; a full match snapshot is a few KB.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	AddRecord(ctx context.Context, in service.AddInput) (service.AddResult, error)
	DeleteRecord(ctx context.Context, id int64) (service.Result, error)
	CorrectNumber(ctx context.Context, id int64, number string) (service.Result, error)
	Reset(ctx context.Context) (service.Scoreboard, error)

	SetMatch(ctx context.Context, m model.Match) (service.Scoreboard, error)
	Match(ctx context.Context) model.Match
	Scoreboard(ctx context.Context) service.Scoreboard

	Records(ctx context.Context, p views.Policy) []derive.Record
	Chronological(ctx context.Context) []derive.Record
	ScreenPolicy() views.Policy
	Exclusions(ctx context.Context) service.Exclusions

	Locale() export.Locale
	ExportCSV(ctx context.Context, loc export.Locale) (string, []byte, error)

	Snapshot(ctx context.Context) model.Snapshot
	Restore(ctx context.Context, snap model.Snapshot) (service.Scoreboard, error)
	ImportLegacy(ctx context.Context, data []byte) (service.Scoreboard, error)

	PreviewKeypad(digits string) service.KeypadPreview
}

// Server wires HTTP routes for the scorer API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	recordsHandler  *RecordsHandler
	matchHandler    *MatchHandler
	exportHandler   *ExportHandler
	snapshotHandler *SnapshotHandler
	keypadHandler   *KeypadHandler
	live            http.Handler
}

// NewServer creates a new API server with all handlers. live serves the
// websocket scoreboard feed and may be nil.
func NewServer(deps Dependencies, statsProvider StatsProvider, live http.Handler) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		recordsHandler:  NewRecordsHandler(deps),
		matchHandler:    NewMatchHandler(deps),
		exportHandler:   NewExportHandler(deps),
		snapshotHandler: NewSnapshotHandler(deps),
		keypadHandler:   NewKeypadHandler(deps),
		live:            live,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/scoreboard", MetricsMiddleware(s.matchHandler.HandleScoreboard, "scoreboard"))
	mux.HandleFunc("/match", MetricsMiddleware(s.matchHandler.HandleMatch, "match"))
	mux.HandleFunc("/reset", MetricsMiddleware(s.matchHandler.HandleReset, "reset"))

	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleRecords, "records"))
	mux.HandleFunc("/records/{id}", MetricsMiddleware(s.recordsHandler.HandleRecord, "record"))
	mux.HandleFunc("/records/{id}/number", MetricsMiddleware(s.recordsHandler.HandleNumber, "record_number"))
	mux.HandleFunc("/exclusions", MetricsMiddleware(s.recordsHandler.HandleExclusions, "exclusions"))

	mux.HandleFunc("/export.csv", MetricsMiddleware(s.exportHandler.HandleExport, "export"))
	mux.HandleFunc("/snapshot", MetricsMiddleware(s.snapshotHandler.HandleSnapshot, "snapshot"))
	mux.HandleFunc("/snapshot/legacy", MetricsMiddleware(s.snapshotHandler.HandleLegacy, "snapshot_legacy"))
	mux.HandleFunc("/keypad", MetricsMiddleware(s.keypadHandler.HandleKeypad, "keypad"))

	// The websocket upgrade needs the raw ResponseWriter, so no middleware.
	if s.live != nil {
		mux.Handle("/ws/scoreboard", s.live)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a handler error onto the status and code the UI expects.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// decodeJSON reads a bounded JSON body into dst. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return WrapKind(op, ErrBodyTooLarge, err)
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}
