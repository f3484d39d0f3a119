package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chartviz/engine/internal/api/middleware"
	"github.com/chartviz/engine/internal/api/types"
	"github.com/chartviz/engine/internal/render"
	"github.com/chartviz/engine/internal/services"
	"github.com/chartviz/engine/internal/square"
	appErr "github.com/chartviz/engine/pkg/errors"
)

type ChartsHandler struct {
	charts services.ChartService
}

func NewChartsHandler(charts services.ChartService) *ChartsHandler {
	return &ChartsHandler{charts: charts}
}

// List godoc
// @Summary List charts visible to the caller
// @Tags charts
// @Produce json
// @Param page query int false "page"
// @Param page_size query int false "page size"
// @Success 200 {object} types.APIResponse{data=[]models.Chart}
// @Router /api/v1/charts [get]
func (h *ChartsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := intQuery(r, "page"), intQuery(r, "page_size")
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	items, total, err := h.charts.ListCharts(r.Context(), middleware.GetUserID(r.Context()), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    items,
		Meta:    &types.Meta{RequestID: middleware.GetRequestID(r.Context()), Page: page, PageSize: size, Total: total},
	})
}

// Create godoc
// @Summary Create a chart from a square tree
// @Tags charts
// @Accept json
// @Produce json
// @Param body body types.ChartCreateRequest true "chart"
// @Success 201 {object} types.APIResponse{data=models.Chart}
// @Router /api/v1/charts [post]
func (h *ChartsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ChartCreateRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.charts.CreateChart(r.Context(), middleware.GetUserID(r.Context()), &services.CreateChartInput{
		Title:    req.Title,
		Data:     req.Data,
		IsPublic: req.IsPublic,
		Theme:    req.Theme,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, c)
}

// Get godoc
// @Summary Get a chart
// @Tags charts
// @Produce json
// @Param id path int true "chart id"
// @Success 200 {object} types.APIResponse{data=models.Chart}
// @Failure 403 {object} types.APIResponse
// @Failure 404 {object} types.APIResponse
// @Router /api/v1/charts/{id} [get]
func (h *ChartsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.charts.GetChart(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, c)
}

// Update godoc
// @Summary Update a chart
// @Tags charts
// @Accept json
// @Produce json
// @Param id path int true "chart id"
// @Param body body types.ChartUpdateRequest true "fields to change"
// @Success 200 {object} types.APIResponse{data=models.Chart}
// @Router /api/v1/charts/{id} [put]
func (h *ChartsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.ChartUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.charts.UpdateChart(r.Context(), id, middleware.GetUserID(r.Context()), &services.UpdateChartInput{
		Title:    req.Title,
		Data:     req.Data,
		IsPublic: req.IsPublic,
		Theme:    req.Theme,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, c)
}

// Delete godoc
// @Summary Delete a chart
// @Tags charts
// @Param id path int true "chart id"
// @Success 204
// @Router /api/v1/charts/{id} [delete]
func (h *ChartsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.charts.DeleteChart(r.Context(), id, middleware.GetUserID(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Render godoc
// @Summary Render a chart as SVG
// @Tags render
// @Produce image/svg+xml
// @Param id path int true "chart id"
// @Param mode query string false "scaled, scoped, included-build or treemap"
// @Param layout query string false "radial or diagonal"
// @Param class query string false "square class for scoped mode"
// @Param exclude query string false "comma separated node ids for included-build mode"
// @Param theme query string false "palette name"
// @Param customized query bool false "overlay saved customizations"
// @Success 200 {string} string "svg document"
// @Success 304
// @Router /api/v1/charts/{id}/render [get]
func (h *ChartsHandler) Render(w http.ResponseWriter, r *http.Request) {
	res, ok := h.render(w, r)
	if !ok {
		return
	}
	w.Header().Set("ETag", res.ETag)
	w.Header().Set("Cache-Control", "private, no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == res.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.SVG)
}

// Scene godoc
// @Summary Lay out a chart and return the positioned squares
// @Tags render
// @Produce json
// @Param id path int true "chart id"
// @Success 200 {object} types.APIResponse{data=render.Scene}
// @Router /api/v1/charts/{id}/scene [get]
func (h *ChartsHandler) Scene(w http.ResponseWriter, r *http.Request) {
	res, ok := h.render(w, r)
	if !ok {
		return
	}
	w.Header().Set("ETag", res.ETag)
	writeData(w, r, http.StatusOK, res.Scene)
}

// HitTest godoc
// @Summary Return the topmost square under a canvas point
// @Tags render
// @Produce json
// @Param id path int true "chart id"
// @Param x query number true "x"
// @Param y query number true "y"
// @Success 200 {object} types.APIResponse{data=services.SquareView}
// @Router /api/v1/charts/{id}/hit [get]
func (h *ChartsHandler) HitTest(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeErrorStr(w, http.StatusBadRequest, "x and y must be numbers")
		return
	}
	res, ok := h.render(w, r)
	if !ok {
		return
	}
	sq, hit := res.Scene.HitTest(x, y)
	if !hit {
		writeError(w, r, appErr.New(appErr.CodeNotFound, "no square at point"))
		return
	}
	id, _ := uintParam(r, "id")
	view, err := h.charts.GetSquare(r.Context(), id, middleware.GetUserID(r.Context()), sq.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, view)
}

func (h *ChartsHandler) render(w http.ResponseWriter, r *http.Request) (*services.RenderResult, bool) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	view, err := viewFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	res, err := h.charts.Render(r.Context(), id, middleware.GetUserID(r.Context()), view)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return res, true
}

func viewFromQuery(r *http.Request) (services.View, error) {
	q := r.URL.Query()
	mode, err := render.ParseMode(q.Get("mode"))
	if err != nil {
		return services.View{}, err
	}
	layout, err := render.ParseVariant(q.Get("layout"))
	if err != nil {
		return services.View{}, err
	}
	v := services.View{
		Mode:   mode,
		Layout: layout,
		Class:  square.Class(strings.ToLower(q.Get("class"))),
		Theme:  q.Get("theme"),
	}
	if raw := q.Get("customized"); raw != "" {
		v.Customized, err = strconv.ParseBool(raw)
		if err != nil {
			return services.View{}, appErr.New(appErr.CodeInvalid, "customized must be a boolean")
		}
	}
	if raw := q.Get("width"); raw != "" {
		if v.Width, err = strconv.ParseFloat(raw, 64); err != nil || v.Width <= 0 {
			return services.View{}, appErr.New(appErr.CodeInvalid, "width must be a positive number")
		}
	}
	if raw := q.Get("height"); raw != "" {
		if v.Height, err = strconv.ParseFloat(raw, 64); err != nil || v.Height <= 0 {
			return services.View{}, appErr.New(appErr.CodeInvalid, "height must be a positive number")
		}
	}
	if raw := q.Get("exclude"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 0 {
				return services.View{}, appErr.New(appErr.CodeInvalid, "exclude must list node ids")
			}
			v.Exclude = append(v.Exclude, square.NodeID(n))
		}
	}
	return v, nil
}

// GetSquare godoc
// @Summary Get one square with its editor data
// @Tags squares
// @Produce json
// @Param id path int true "chart id"
// @Param node path int true "node id"
// @Success 200 {object} types.APIResponse{data=services.SquareView}
// @Router /api/v1/charts/{id}/squares/{node} [get]
func (h *ChartsHandler) GetSquare(w http.ResponseWriter, r *http.Request) {
	id, node, ok := chartAndNode(w, r)
	if !ok {
		return
	}
	view, err := h.charts.GetSquare(r.Context(), id, middleware.GetUserID(r.Context()), node)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, view)
}

// UpdateSquare godoc
// @Summary Merge editor data into a square of the stored tree
// @Tags squares
// @Accept json
// @Produce json
// @Param id path int true "chart id"
// @Param node path int true "node id"
// @Param body body types.SquareUpdateRequest true "editor data"
// @Success 200 {object} types.APIResponse{data=services.SquareView}
// @Router /api/v1/charts/{id}/squares/{node} [put]
func (h *ChartsHandler) UpdateSquare(w http.ResponseWriter, r *http.Request) {
	id, node, ok := chartAndNode(w, r)
	if !ok {
		return
	}
	var req types.SquareUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.charts.UpdateSquare(r.Context(), id, middleware.GetUserID(r.Context()), node, req.Data())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, view)
}

func chartAndNode(w http.ResponseWriter, r *http.Request) (uint64, square.NodeID, bool) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return 0, 0, false
	}
	n, err := strconv.Atoi(chi.URLParam(r, "node"))
	if err != nil || n < 0 {
		writeErrorStr(w, http.StatusBadRequest, "invalid node id")
		return 0, 0, false
	}
	return id, square.NodeID(n), true
}
