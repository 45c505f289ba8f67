// Package handler exposes the dashboard HTTP API: upload, table, aggregate
// views, search, export and session reset.
package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	gsessions "github.com/gorilla/sessions"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/analytics"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/billing"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/ingest/parser"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/session"
	"github.com/FACorreiaa/billing-dashboard/pkg/middleware"
)

const defaultSearchLimit = 100

// DashboardHandler routes dashboard API requests to the session and
// analytics services.
type DashboardHandler struct {
	sessions       *session.Service
	analytics      *analytics.Service
	cookies        *gsessions.CookieStore
	cookieName     string
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewDashboardHandler(
	sessions *session.Service,
	analyticsSvc *analytics.Service,
	cookies *gsessions.CookieStore,
	cookieName string,
	maxUploadBytes int64,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		sessions:       sessions,
		analytics:      analyticsSvc,
		cookies:        cookies,
		cookieName:     cookieName,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Register mounts all dashboard routes on the mux.
func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", h.Upload)
	mux.HandleFunc("POST /api/clear", h.Clear)
	mux.HandleFunc("GET /api/table", h.Table)
	mux.HandleFunc("GET /api/dashboard", h.Dashboard)
	mux.HandleFunc("GET /api/search", h.Search)
	mux.HandleFunc("GET /api/export", h.Export)
	mux.HandleFunc("GET /healthz", h.Health)
}

// sessionID returns the caller's session ID, minting and persisting a new
// one when the cookie is absent.
func (h *DashboardHandler) sessionID(w http.ResponseWriter, r *http.Request) string {
	sess, _ := h.cookies.Get(r, h.cookieName)
	if id, ok := sess.Values["id"].(string); ok && id != "" {
		return id
	}

	id := uuid.New().String()
	sess.Values["id"] = id
	if err := h.cookies.Save(r, w, sess); err != nil {
		h.logger.Warn("session cookie save failed", slog.Any("error", err))
	}
	return id
}

// Upload accepts a multipart workbook upload. The optional append form
// field merges into the existing table instead of replacing it.
func (h *DashboardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "upload_too_large", "upload exceeds the size limit")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "malformed_upload", "could not parse multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "missing_file", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "unreadable_file", "could not read uploaded file")
		return
	}

	appendMode, _ := strconv.ParseBool(r.FormValue("append"))

	summary, err := h.sessions.Upload(r.Context(), sessionID, header.Filename, data, appendMode)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, summary)
}

// writeUploadError maps pipeline errors onto the API error taxonomy.
func (h *DashboardHandler) writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		middleware.WriteError(w, http.StatusUnsupportedMediaType, "unsupported_format", err.Error())
	case errors.Is(err, billing.ErrMissingDateColumn):
		middleware.WriteError(w, http.StatusUnprocessableEntity, "missing_date_column", err.Error())
	case errors.Is(err, billing.ErrMissingAmountColumn):
		middleware.WriteError(w, http.StatusUnprocessableEntity, "missing_amount_column", err.Error())
	case errors.Is(err, billing.ErrMergeColumnMismatch):
		middleware.WriteError(w, http.StatusConflict, "merge_column_mismatch", err.Error())
	default:
		h.logger.Error("upload failed", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "internal_error", "upload failed")
	}
}

// Clear resets the session's table.
func (h *DashboardHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	h.sessions.Clear(r.Context(), sessionID)
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

type tableResponse struct {
	HasData bool                `json:"has_data"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// Table returns the session's normalized table as records.
func (h *DashboardHandler) Table(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	tbl := h.sessions.Current(r.Context(), sessionID)
	if tbl.IsEmpty() {
		middleware.WriteJSON(w, http.StatusOK, tableResponse{Rows: []map[string]string{}})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tableResponse{
		HasData: true,
		Columns: tbl.Columns,
		Rows:    tbl.Records(),
	})
}

// Dashboard returns the full aggregate payload.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	tbl := h.sessions.Current(r.Context(), sessionID)
	middleware.WriteJSON(w, http.StatusOK, h.analytics.Dashboard(r.Context(), tbl))
}

// Search looks up rows matching the q parameter.
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	q := r.URL.Query().Get("q")
	limit := defaultSearchLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	rows, err := h.sessions.Search(r.Context(), sessionID, q, limit)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	if rows == nil {
		rows = []map[string]string{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// Export streams the session table as a CSV download.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	tbl := h.sessions.Current(r.Context(), sessionID)
	if tbl.IsEmpty() {
		middleware.WriteError(w, http.StatusNotFound, "no_data", "no table uploaded")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="billing_export.csv"`)
	if err := h.sessions.ExportCSV(r.Context(), sessionID, w); err != nil {
		h.logger.Error("csv export failed", slog.Any("error", err))
	}
}

// Health is the liveness probe.
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
