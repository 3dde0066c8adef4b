package api

import (
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/polo/internal/app"
	"github.com/okian/polo/internal/domain/derive"
	"github.com/okian/polo/internal/domain/views"
)

// Record orderings accepted by GET /records.
const (
	OrderScreen        = "screen"
	OrderExport        = "export"
	OrderChronological = "chronological"
)

// idempotencyHeader is read when the body carries no requestId.
const idempotencyHeader = "Idempotency-Key"

// recordView is a derived record as the UI renders it.
type recordView struct {
	derive.Record
	EventCode   string `json:"eventCode"`
	Correctable bool   `json:"correctable"`
}

func toViews(records []derive.Record) []recordView {
	out := make([]recordView, len(records))
	for i, r := range records {
		out[i] = recordView{Record: r, EventCode: r.Kind.Code(), Correctable: r.Correctable()}
	}
	return out
}

type recordsResponse struct {
	Order   string       `json:"order"`
	Records []recordView `json:"records"`
}

type addResponse struct {
	Record     recordView         `json:"record"`
	Duplicate  bool               `json:"duplicate"`
	Scoreboard service.Scoreboard `json:"scoreboard"`
}

type numberRequest struct {
	Number string `json:"playerNumber"`
}

// RecordsHandler serves the record log and its mutations.
type RecordsHandler struct {
	deps Dependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps Dependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleRecords handles GET and POST /records.
func (h *RecordsHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.add(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *RecordsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("order")))
	var records []derive.Record
	switch order {
	case "", OrderScreen:
		order = OrderScreen
		records = h.deps.Records(ctx, h.deps.ScreenPolicy())
	case OrderExport:
		records = h.deps.Records(ctx, views.ExportPolicy)
	case OrderChronological:
		records = h.deps.Chronological(ctx)
	default:
		writeFailure(w, NewKind("list records: unknown order "+strconv.Quote(order), ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, recordsResponse{Order: order, Records: toViews(records)})
}

func (h *RecordsHandler) add(w http.ResponseWriter, r *http.Request) {
	var in service.AddInput
	if err := decodeJSON(w, r, "add record", &in); err != nil {
		writeFailure(w, err)
		return
	}
	if in.RequestID == "" {
		in.RequestID = strings.TrimSpace(r.Header.Get(idempotencyHeader))
	}
	res, err := h.deps.AddRecord(r.Context(), in)
	if err != nil {
		writeFailure(w, Wrap("add record", err))
		return
	}
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, addResponse{
		Record:     toViews([]derive.Record{res.Record})[0],
		Duplicate:  res.Duplicate,
		Scoreboard: res.Scoreboard,
	})
}

// HandleRecord handles DELETE /records/{id}.
func (h *RecordsHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeFailure(w, Wrap("delete record", err))
		return
	}
	res, err := h.deps.DeleteRecord(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap("delete record", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleNumber handles PATCH /records/{id}/number.
func (h *RecordsHandler) HandleNumber(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.NotFound(w, r)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeFailure(w, Wrap("correct number", err))
		return
	}
	var req numberRequest
	if err := decodeJSON(w, r, "correct number", &req); err != nil {
		writeFailure(w, err)
		return
	}
	res, err := h.deps.CorrectNumber(r.Context(), id, req.Number)
	if err != nil {
		writeFailure(w, Wrap("correct number", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleExclusions handles GET /exclusions.
func (h *RecordsHandler) HandleExclusions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Exclusions(r.Context()))
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewKind(strconv.Quote(raw), ErrInvalidID)
	}
	return id, nil
}
