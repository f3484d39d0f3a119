package handlers

import (
	"net/http"

	"github.com/chartviz/engine/internal/api/middleware"
	"github.com/chartviz/engine/internal/chat"
	"github.com/chartviz/engine/internal/services"
)

type ChatHandler struct {
	hub    *chat.Hub
	charts services.ChartService
}

func NewChatHandler(hub *chat.Hub, charts services.ChartService) *ChatHandler {
	return &ChatHandler{hub: hub, charts: charts}
}

// Connect godoc
// @Summary Join the chat room of a chart over a websocket
// @Tags chat
// @Param id path int true "chart id"
// @Param access_token query string false "bearer token for browsers"
// @Param name query string false "display name"
// @Success 101
// @Router /api/v1/charts/{id}/chat [get]
func (h *ChatHandler) Connect(w http.ResponseWriter, r *http.Request) {
	id, err := uintParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	uid := middleware.GetUserID(r.Context())
	if _, err := h.charts.GetChart(r.Context(), id, uid); err != nil {
		writeError(w, r, err)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = uid.String()[:8]
	}
	_ = h.hub.Serve(w, r, id, chat.Member{UserID: uid.String(), Name: name})
}
