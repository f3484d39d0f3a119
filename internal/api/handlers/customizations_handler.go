package handlers

import (
	"net/http"

	"github.com/chartviz/engine/internal/api/middleware"
	"github.com/chartviz/engine/internal/api/types"
	"github.com/chartviz/engine/internal/editor"
	"github.com/chartviz/engine/internal/services"
	"github.com/chartviz/engine/internal/square"
)

// CustomizationsHandler serves the persistence endpoints the square editor talks to.
type CustomizationsHandler struct {
	svc services.CustomizationService
}

func NewCustomizationsHandler(svc services.CustomizationService) *CustomizationsHandler {
	return &CustomizationsHandler{svc: svc}
}

// Save godoc
// @Summary Append a square customization
// @Tags customizations
// @Accept json
// @Produce json
// @Param body body types.CustomizationRequest true "customization"
// @Success 201 {object} types.APIResponse{data=models.SquareCustomization}
// @Router /api/square-customization [post]
func (h *CustomizationsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req types.CustomizationRequest
	if !decode(w, r, &req) {
		return
	}
	row, err := h.svc.SaveCustomization(r.Context(), middleware.GetUserID(r.Context()), req.ChartID, req.Key(), req.Data())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, row)
}

// List godoc
// @Summary List every customization of a chart in save order
// @Tags customizations
// @Produce json
// @Param chartId path int true "chart id"
// @Success 200 {object} types.APIResponse{data=[]models.SquareCustomization}
// @Router /api/square-customization/{chartId} [get]
func (h *CustomizationsHandler) List(w http.ResponseWriter, r *http.Request) {
	chartID, err := uintParam(r, "chartId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.svc.ListCustomizations(r.Context(), middleware.GetUserID(r.Context()), chartID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, rows)
}

// SaveDetailing godoc
// @Summary Append detailings for a square key
// @Tags detailings
// @Accept json
// @Produce json
// @Param body body types.DetailingRequest true "detailing"
// @Success 201 {object} types.APIResponse{data=models.SquareDetailing}
// @Router /api/square-detailing [post]
func (h *CustomizationsHandler) SaveDetailing(w http.ResponseWriter, r *http.Request) {
	var req types.DetailingRequest
	if !decode(w, r, &req) {
		return
	}
	row, err := h.svc.SaveDetailing(r.Context(), middleware.GetUserID(r.Context()), &services.DetailingInput{
		ChartID:    req.ChartID,
		Key:        req.Key(),
		Plane:      req.Plane,
		Purpose:    req.Purpose,
		Delineator: req.Delineator,
		Notations:  req.Notations,
		Details:    req.Details,
		ExtraData:  req.ExtraData,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, row)
}

// ListDetailings godoc
// @Summary List detailings of a chart, optionally for one square key
// @Tags detailings
// @Produce json
// @Param chartId path int true "chart id"
// @Param squareClass query string false "root, branch, leaf or fruit"
// @Param parentText query string false "parent label"
// @Param depth query int false "depth"
// @Success 200 {object} types.APIResponse{data=[]models.SquareDetailing}
// @Router /api/square-detailing/{chartId} [get]
func (h *CustomizationsHandler) ListDetailings(w http.ResponseWriter, r *http.Request) {
	chartID, err := uintParam(r, "chartId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var key *square.Key
	if r.URL.Query().Has("squareClass") {
		k, err := editor.ParseDetailingsQuery(r.URL.Query())
		if err != nil {
			writeError(w, r, err)
			return
		}
		key = &k
	}
	rows, err := h.svc.ListDetailings(r.Context(), middleware.GetUserID(r.Context()), chartID, key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, rows)
}

// SquareForm godoc
// @Summary Resolve the context of the detailings form
// @Description Accepts the query the square editor links to and echoes the parsed key.
// @Tags detailings
// @Produce json
// @Param squareClass query string true "root, branch, leaf or fruit"
// @Param parentText query string true "parent label"
// @Param depth query int true "depth"
// @Success 200 {object} types.APIResponse{data=square.Key}
// @Failure 400 {object} types.APIResponse
// @Router /square-form [get]
func (h *CustomizationsHandler) SquareForm(w http.ResponseWriter, r *http.Request) {
	key, err := editor.ParseDetailingsQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, key)
}
