package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maltedev/shoplens/internal/export"
	"github.com/maltedev/shoplens/internal/persist"
	"github.com/maltedev/shoplens/internal/recognition"
	"github.com/maltedev/shoplens/internal/search"
)

// Search handles a multipart image upload in the "image" field. An optional
// "imageUrl" field is stored with the result.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, search.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(search.MaxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge, search.ErrImageTooLarge.Error())
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, search.MaxImageSize+1))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	result, err := h.search.Search(r.Context(), recognition.Image{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		URL:         r.FormValue("imageUrl"),
	})
	switch {
	case errors.Is(err, search.ErrImageTooLarge):
		h.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, search.ErrNotImage), errors.Is(err, search.ErrEmptyImage):
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, search.ErrNoMatch):
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.logger.Error("search failed", "error", err, "file", header.Filename)
		h.respondError(w, http.StatusInternalServerError, "search failed")
		return
	}

	h.respondJSON(w, http.StatusCreated, result)
}

func (h *Handlers) ListResults(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.stores.Results.List(r.Context()))
}

func (h *Handlers) GetResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.stores.Results.Get(r.Context(), chi.URLParam(r, "resultID"))
	if errors.Is(err, persist.ErrResultNotFound) {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) DeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Results.Remove(r.Context(), chi.URLParam(r, "resultID")); err != nil {
		h.logger.Error("failed to remove result", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to remove result")
		return
	}
	h.respondNoContent(w)
}

func (h *Handlers) ClearResults(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Results.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear results", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to clear results")
		return
	}
	h.respondNoContent(w)
}

func (h *Handlers) ExportResult(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.stores.Results.Get(r.Context(), chi.URLParam(r, "resultID"))
	if err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	writeDownload(w, "result", result.ID, format)
	if err := export.Result(w, result, format); err != nil {
		h.logger.Error("failed to export result", "error", err, "id", result.ID)
	}
}

func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.stores.History.List(r.Context()))
}

func (h *Handlers) DeleteHistoryItem(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.History.Remove(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		h.logger.Error("failed to remove history item", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to remove history item")
		return
	}
	h.respondNoContent(w)
}

func (h *Handlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.History.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear history", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	h.respondNoContent(w)
}

func writeDownload(w http.ResponseWriter, kind, id string, format export.Format) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(kind, id, format)))
	w.WriteHeader(http.StatusOK)
}
