/*
handlers.go - HTTP API handlers for the arrear engine

PURPOSE:
  Exposes the arrear engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine and report store.

ENDPOINTS:
  Arrears:
    POST   /api/arrears                Compute and save a report
    POST   /api/arrears/preview        Compute without saving
    GET    /api/arrears                List saved reports (?limit=)
    GET    /api/arrears/{id}           Get a saved report
    DELETE /api/arrears/{id}           Delete a saved report
    GET    /api/arrears/{id}/export    Download (?format=xlsx|csv)

  Reference data:
    GET    /api/reference/pay-matrix         All tracks
    GET    /api/reference/pay-matrix/export  Pay matrix workbook
    GET    /api/reference/da-rates           DA history (?at=YYYYMM)

  Scenarios:
    GET    /api/scenarios              List demo inputs
    POST   /api/scenarios/{id}/run     Compute a demo input

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Reference: The pay matrix and DA history the engine was built from
  - Engine: Shared, read-only; per-request policy overrides use Engine.With
  - Reports: Saved computations (sqlite in production, memory in tests)

REQUEST FLOW:
  1. Decode JSON body
  2. Validate shape (validator tags on CalculateRequest)
  3. Run the engine (domain validation happens here)
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (generic.IsClientError)
  - 404: Report or scenario not found
  - 500: Internal errors (logged)

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenarios
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/export"
	"github.com/warp/arrear-engine/factory"
	"github.com/warp/arrear-engine/generic"
)

const (
	maxBodyBytes     = 1 << 20
	defaultListLimit = 50
	maxListLimit     = 500

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Reference *factory.Reference
	Engine    *arrear.Engine
	Reports   arrear.ReportStore
	Logger    *zap.Logger

	validate *validator.Validate
}

// NewHandler creates a handler. A nil logger disables logging.
func NewHandler(ref *factory.Reference, engine *arrear.Engine, reports arrear.ReportStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Reference: ref,
		Engine:    engine,
		Reports:   reports,
		Logger:    logger,
		validate:  validator.New(),
	}
}

// =============================================================================
// ARREAR HANDLERS
// =============================================================================

// CreateArrear computes a report and saves it.
// POST /api/arrears
func (h *Handler) CreateArrear(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCalculateRequest(w, r)
	if !ok {
		return
	}

	engine := h.Engine.With(arrear.WithPolicy(req.Policy(h.Engine.Policy())))
	in, res, err := h.compute(engine, req)
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute arrear", err)
		return
	}

	rep := arrear.NewReport(in, engine.Policy(), res)
	if err := h.Reports.Save(r.Context(), rep); err != nil {
		h.writeDomainError(w, r, "Failed to save report", err)
		return
	}

	h.Logger.Info("arrear report saved",
		zap.String("report_id", rep.ID),
		zap.Int("grade_pay", req.GradePay),
		zap.Int("months", res.Months()),
		zap.String("total_arrear", res.TotalArrear.StringFixed(generic.MoneyPlaces)),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)

	writeJSON(w, http.StatusCreated, toReportDTO(rep))
}

// PreviewArrear computes without saving.
// POST /api/arrears/preview
func (h *Handler) PreviewArrear(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCalculateRequest(w, r)
	if !ok {
		return
	}

	engine := h.Engine.With(arrear.WithPolicy(req.Policy(h.Engine.Policy())))
	_, res, err := h.compute(engine, req)
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute arrear", err)
		return
	}

	writeJSON(w, http.StatusOK, toResultDTO(res))
}

// ListArrears returns saved report summaries, newest first.
// GET /api/arrears?limit=50
func (h *Handler) ListArrears(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", fmt.Errorf("limit must be a positive integer, got %q", s))
			return
		}
		limit = min(n, maxListLimit)
	}

	summaries, err := h.Reports.List(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list reports", err)
		return
	}

	dtos := make([]ReportSummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toReportSummaryDTO(s)
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": dtos})
}

// GetArrear returns a saved report.
// GET /api/arrears/{id}
func (h *Handler) GetArrear(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to load report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(rep))
}

// DeleteArrear removes a saved report.
// DELETE /api/arrears/{id}
func (h *Handler) DeleteArrear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Reports.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to delete report", err)
		return
	}
	h.Logger.Info("arrear report deleted", zap.String("report_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ExportArrear downloads a saved report as a workbook or CSV.
// GET /api/arrears/{id}/export?format=xlsx
func (h *Handler) ExportArrear(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		writeError(w, http.StatusBadRequest, "Invalid format", fmt.Errorf("format must be xlsx or csv, got %q", format))
		return
	}

	rep, err := h.Reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, "Failed to load report", err)
		return
	}

	// Render fully before writing headers so failures still produce a 500.
	var buf bytes.Buffer
	contentType := contentTypeXLSX
	if format == "csv" {
		contentType = contentTypeCSV
		err = export.WriteCSV(&buf, rep.Result)
	} else {
		err = export.WriteXLSX(&buf, rep, h.Reference.Matrix)
	}
	if err != nil {
		h.writeDomainError(w, r, "Failed to export report", err)
		return
	}

	writeAttachment(w, contentType, fmt.Sprintf("arrear-%s.%s", rep.ID, format), buf.Bytes())
}

// =============================================================================
// REFERENCE DATA HANDLERS
// =============================================================================

// GetPayMatrix returns every pay matrix track.
// GET /api/reference/pay-matrix
func (h *Handler) GetPayMatrix(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPayMatrixDTO(h.Reference))
}

// ExportPayMatrix downloads the pay matrix as a workbook.
// GET /api/reference/pay-matrix/export
func (h *Handler) ExportPayMatrix(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteMatrixXLSX(&buf, h.Reference.Matrix); err != nil {
		h.writeDomainError(w, r, "Failed to export pay matrix", err)
		return
	}
	writeAttachment(w, contentTypeXLSX, "pay-matrix.xlsx", buf.Bytes())
}

// GetDARates returns the DA history, and the rate in force at ?at=YYYYMM.
// GET /api/reference/da-rates
func (h *Handler) GetDARates(w http.ResponseWriter, r *http.Request) {
	rates := h.Reference.Rates
	resp := map[string]any{}

	entries := rates.Entries()
	dtos := make([]DARateDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toDARateDTO(e)
	}
	resp["rates"] = dtos

	if at := r.URL.Query().Get("at"); at != "" {
		m, err := generic.ParseYYYYMM(at)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
		entry := rates.EntryAt(m)
		resp["at"] = DARateDTO{
			Effective: entry.Effective.YYYYMM(),
			Label:     m.Label(),
			Rate:      entry.Rate.String(),
			Percent:   entry.Percent().String(),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health reports liveness, and store reachability when the store can be pinged.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Reports.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decodeCalculateRequest(w http.ResponseWriter, r *http.Request) (CalculateRequest, bool) {
	var req CalculateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return req, false
	}
	return req, true
}

func (h *Handler) compute(engine *arrear.Engine, req CalculateRequest) (arrear.Input, *arrear.Result, error) {
	in, err := arrear.ParseInput(req.Raw())
	if err != nil {
		return arrear.Input{}, nil, err
	}
	res, err := engine.Compute(in)
	if err != nil {
		return arrear.Input{}, nil, err
	}
	return in, res, nil
}

// writeDomainError maps engine and store errors to status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, generic.ErrInvalidPeriod):
		writeErrorCode(w, http.StatusBadRequest, CodeInvalidPeriod, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Report not found", err)
	default:
		h.Logger.Error(message,
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonFieldName(fe.Field())] = fe.Tag()
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request",
		Code:    CodeValidationFailed,
		Details: fields,
	})
}

// jsonFieldName maps CalculateRequest field names to their JSON keys.
func jsonFieldName(field string) string {
	switch field {
	case "GradePay":
		return "grade_pay"
	case "Basic":
		return "basic"
	case "IncrementMonth":
		return "increment_month"
	case "EndMonth":
		return "end_month"
	case "PromotionMonth":
		return "promotion_month"
	case "IncrementTiming":
		return "increment_timing"
	default:
		return field
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an ErrorResponse whose code follows from the status.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	writeErrorCode(w, status, codeForStatus(status), message, err)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidInput
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
