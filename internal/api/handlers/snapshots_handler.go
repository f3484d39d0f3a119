package handlers

import (
	"net/http"

	"github.com/chartviz/engine/internal/api/middleware"
	"github.com/chartviz/engine/internal/api/types"
	"github.com/chartviz/engine/internal/services"
)

type SnapshotsHandler struct {
	svc services.SnapshotService
}

func NewSnapshotsHandler(svc services.SnapshotService) *SnapshotsHandler {
	return &SnapshotsHandler{svc: svc}
}

// Create godoc
// @Summary Queue a background snapshot render
// @Tags snapshots
// @Accept json
// @Produce json
// @Param id path int true "chart id"
// @Param body body types.SnapshotCreateRequest false "view"
// @Success 202 {object} types.APIResponse{data=services.SnapshotRequest}
// @Router /api/v1/charts/{id}/snapshots [post]
func (h *SnapshotsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.SnapshotCreateRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	res, err := h.svc.RequestSnapshot(r.Context(), id, middleware.GetUserID(r.Context()), services.SnapshotPayload{
		Mode:       req.Mode,
		Layout:     req.Layout,
		Class:      req.Class,
		Theme:      req.Theme,
		Customized: req.Customized,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusAccepted
	if !res.Queued {
		status = http.StatusOK
	}
	writeData(w, r, status, res)
}

// List godoc
// @Summary List snapshot versions, newest first
// @Tags snapshots
// @Produce json
// @Param id path int true "chart id"
// @Success 200 {object} types.APIResponse{data=[]models.ChartSnapshot}
// @Router /api/v1/charts/{id}/snapshots [get]
func (h *SnapshotsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.svc.ListSnapshots(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, rows)
}

// Current godoc
// @Summary Serve the current snapshot SVG
// @Tags snapshots
// @Produce image/svg+xml
// @Param id path int true "chart id"
// @Success 200 {string} string "svg document"
// @Router /api/v1/charts/{id}/snapshots/current [get]
func (h *SnapshotsHandler) Current(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.CurrentSnapshot(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	etag := `"` + snap.Checksum + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(snap.SVG))
}
