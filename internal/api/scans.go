package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maltedev/shoplens/internal/export"
	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/persist"
	"github.com/maltedev/shoplens/internal/scanner"
	"github.com/maltedev/shoplens/internal/stats"
)

type StartScanRequest struct {
	URL     string `json:"url"`
	Profile string `json:"profile,omitempty"`
}

func (h *Handlers) ListScans(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.scans.List(r.Context()))
}

func (h *Handlers) StartScan(w http.ResponseWriter, r *http.Request) {
	var req StartScanRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	profile := scanner.DefaultProfile()
	if req.Profile != "" {
		p, ok := scanner.Profile(req.Profile)
		if !ok {
			h.respondError(w, http.StatusBadRequest, "unknown scan profile")
			return
		}
		profile = p
	}

	scan, err := h.scans.Start(r.Context(), req.URL, profile)
	if errors.Is(err, scanner.ErrInvalidURL) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to start scan", "error", err, "url", req.URL)
		h.respondError(w, http.StatusInternalServerError, "failed to start scan")
		return
	}

	h.respondJSON(w, http.StatusAccepted, scan)
}

func (h *Handlers) GetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := h.scans.Get(r.Context(), chi.URLParam(r, "scanID"))
	if err != nil {
		h.respondScanError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, scan)
}

func (h *Handlers) PauseScan(w http.ResponseWriter, r *http.Request) {
	h.changeScan(w, r, h.scans.Pause)
}

func (h *Handlers) ResumeScan(w http.ResponseWriter, r *http.Request) {
	h.changeScan(w, r, h.scans.Resume)
}

func (h *Handlers) StopScan(w http.ResponseWriter, r *http.Request) {
	h.changeScan(w, r, h.scans.Stop)
}

func (h *Handlers) DeleteScan(w http.ResponseWriter, r *http.Request) {
	if err := h.scans.Delete(r.Context(), chi.URLParam(r, "scanID")); err != nil {
		h.logger.Error("failed to delete scan", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to delete scan")
		return
	}
	h.respondNoContent(w)
}

func (h *Handlers) ClearScans(w http.ResponseWriter, r *http.Request) {
	if err := h.scans.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear scans", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to clear scans")
		return
	}
	h.respondNoContent(w)
}

func (h *Handlers) ExportScan(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	scan, err := h.scans.Get(r.Context(), chi.URLParam(r, "scanID"))
	if err != nil {
		h.respondScanError(w, err)
		return
	}

	writeDownload(w, "scan", scan.ID, format)
	if err := export.Scan(w, scan, format); err != nil {
		h.logger.Error("failed to export scan", "error", err, "id", scan.ID)
	}
}

func (h *Handlers) GetScanStats(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, stats.ComputeScans(h.scans.List(r.Context())))
}

func (h *Handlers) ListProfiles(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, scanner.Profiles())
}

func (h *Handlers) changeScan(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (models.ScanResult, error)) {
	scan, err := fn(r.Context(), chi.URLParam(r, "scanID"))
	if err != nil {
		h.respondScanError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, scan)
}

func (h *Handlers) respondScanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, persist.ErrScanNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scanner.ErrInvalidTransition):
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("scan operation failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "scan operation failed")
	}
}
