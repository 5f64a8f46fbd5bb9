/*
handlers.go - HTTP API handlers for the traffic engine

PURPOSE:
  Exposes the attendance workspace to the external UI. Handles HTTP
  request/response and JSON serialization, and delegates to the workspace.

ENDPOINTS:
  Uploads:
    POST   /api/uploads                 Upload a swipe export (multipart "file")
    GET    /api/uploads                 Stored uploads, latest generation first

  Settings:
    GET    /api/settings                Current parameters and their bounds
    PUT    /api/settings                Change parameters (clamped, persisted)

  People:
    GET    /api/people?search=          Ranked high-traffic people
    GET    /api/people/{id}             Merged log of one person
    GET    /api/people/{id}/summary     Reference-month classification

  Report:
    GET    /api/report                  Export rows as JSON
    GET    /api/report/export           Export rows as an .xlsx download

ARCHITECTURE:
  Handler holds:
  - Workspace: The in-memory raw dataset and parameters
  - Store:     Durable copy of uploads and parameters
  - Metrics:   Upload outcomes and HTTP counters
  Every read derives a fresh View, so a parameter change is visible to the
  next request with no cache to invalidate.

UPLOAD FLOW:
  1. Take a load ticket before reading the body
  2. Decode the file (all-or-nothing)
  3. Ingest and publish under the ticket; a newer publish wins (409)
  4. Persist under the ticket's generation and prune old uploads

  Generations continue across restarts (LoadState reserves the stored
  maximum), so the stored upload with the highest generation is always the
  one that was last live, whatever order the saves committed in.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Unreadable file, invalid input
  - 404: Unknown person, no data loaded
  - 409: Upload superseded by a newer one
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/traffic-engine/attendance"
	"github.com/warp/traffic-engine/logging"
	"github.com/warp/traffic-engine/metrics"
	"github.com/warp/traffic-engine/sheet"
	"github.com/warp/traffic-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

const (
	defaultMaxUploadBytes = 32 << 20
	defaultKeepUploads    = 10
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Workspace *attendance.Workspace
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	MaxUploadBytes int64
	KeepUploads    int
}

// NewHandler creates a new handler. m and logger may be nil.
func NewHandler(store *sqlite.Store, ws *attendance.Workspace, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		Store:          store,
		Workspace:      ws,
		Metrics:        m,
		Logger:         logger,
		MaxUploadBytes: defaultMaxUploadBytes,
		KeepUploads:    defaultKeepUploads,
	}
}

// LoadState restores the saved parameters and the latest upload into the
// workspace. Call once at startup.
func (h *Handler) LoadState(ctx context.Context) error {
	p, ok, err := h.Store.LoadParams(ctx)
	if err != nil {
		return fmt.Errorf("failed to load params: %w", err)
	}
	if ok {
		h.Workspace.SetParams(p)
	}

	latest, err := h.Store.LatestUpload(ctx)
	if err != nil {
		return fmt.Errorf("failed to find latest upload: %w", err)
	}
	if latest == nil {
		return nil
	}
	// New uploads must outrank everything already stored, even if the
	// dataset below cannot be read.
	h.Workspace.Reserve(latest.Generation)

	ds, err := h.Store.LoadDataset(ctx, latest.ID)
	if err != nil {
		return fmt.Errorf("failed to load upload %s: %w", latest.ID, err)
	}
	if ds == nil {
		return nil
	}
	if err := h.Workspace.Resume(latest.Generation, ds); err != nil {
		return err
	}
	h.Logger.Info("restored upload",
		"upload_id", latest.ID, "filename", latest.Filename, "generation", latest.Generation,
		"people", ds.Len(), "rows", ds.Rows())
	return nil
}

// =============================================================================
// UPLOAD ENDPOINTS
// =============================================================================

// Upload handles POST /api/uploads
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ticket := h.Workspace.BeginLoad()
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.Metrics.DecodeFailed()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Missing multipart field \"file\"", err)
		return
	}
	defer file.Close()

	events, err := sheet.Decode(file, header.Filename)
	if err != nil {
		h.Metrics.DecodeFailed()
		h.Logger.Warn("upload rejected", "filename", header.Filename, "error", err)
		writeAppError(w, err)
		return
	}

	ds := attendance.Ingest(events)
	if err := h.Workspace.Publish(ticket, ds); err != nil {
		h.Logger.Info("upload superseded", "filename", header.Filename, "generation", ticket.Generation())
		writeAppError(w, err)
		return
	}

	dto := UploadDTO{
		Filename:   header.Filename,
		Generation: ticket.Generation(),
		Rows:       ds.Rows(),
		People:     ds.Len(),
	}
	saved, err := h.Store.SaveUpload(r.Context(), sqlite.Upload{Filename: header.Filename, Generation: ticket.Generation()}, ds)
	if err != nil {
		// The upload is live in memory; only durability failed.
		h.Logger.Error("failed to persist upload", "filename", header.Filename, "error", err)
	} else {
		dto = toUploadDTO(saved)
		if n, err := h.Store.PruneUploads(r.Context(), h.KeepUploads); err != nil {
			h.Logger.Error("failed to prune uploads", "error", err)
		} else if n > 0 {
			h.Logger.Debug("pruned uploads", "removed", n)
		}
	}

	h.Logger.Info("upload published",
		"filename", dto.Filename, "generation", dto.Generation,
		"rows", dto.Rows, "people", dto.People, "persisted", dto.Persisted)
	writeJSON(w, http.StatusCreated, dto)
}

// ListUploads handles GET /api/uploads
func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.Store.ListUploads(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list uploads", err)
		return
	}

	dtos := make([]UploadDTO, len(uploads))
	for i, u := range uploads {
		dtos[i] = toUploadDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SETTINGS ENDPOINTS
// =============================================================================

// GetSettings handles GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse(h.Workspace.Params()))
}

// UpdateSettings handles PUT /api/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := req.apply(h.Workspace.Params())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reference month", err)
		return
	}
	p = h.Workspace.SetParams(p)

	if err := h.Store.SaveParams(r.Context(), p); err != nil {
		h.Logger.Error("failed to persist params", "error", err)
	}
	h.Logger.Debug("params updated",
		"merge_interval_minutes", p.MergeIntervalMinutes,
		"traffic_limit", p.TrafficLimit,
		"reference_month", p.ReferenceMonth)
	writeJSON(w, http.StatusOK, settingsResponse(p))
}

// =============================================================================
// PEOPLE ENDPOINTS
// =============================================================================

// ListPeople handles GET /api/people
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	view := h.Workspace.View()
	writeJSON(w, http.StatusOK, PeopleResponse{
		Loaded:     view.Merged != nil,
		Generation: view.Generation,
		Params:     view.Params,
		Total:      len(view.Ranked),
		People:     attendance.ReportRows(view.Search(r.URL.Query().Get("search"))),
	})
}

// GetPerson handles GET /api/people/{id}
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	view := h.Workspace.View()
	p, err := view.Person(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTO(p, view.Params.TrafficLimit))
}

// GetSummary handles GET /api/people/{id}/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Workspace.View().Summary(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(s))
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// GetReport handles GET /api/report
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toReportResponse(h.Workspace.View().Report()))
}

// ExportReport handles GET /api/report/export
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	rows := h.Workspace.View().Report()
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "Nothing to export", attendance.ErrNoData)
		return
	}

	var buf bytes.Buffer
	if err := sheet.WriteReport(&buf, rows); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attendance.ReportFileName))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"generation": h.Workspace.Generation(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeAppError maps attendance errors to a status code.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case attendance.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Unreadable attendance file", err)
	case attendance.IsConflict(err):
		writeError(w, http.StatusConflict, "Upload superseded by a newer one", err)
	case errors.Is(err, attendance.ErrNoData):
		writeError(w, http.StatusNotFound, "No attendance data loaded", err)
	case attendance.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Person not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
