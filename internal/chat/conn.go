package chat

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chartviz/engine/pkg/logger"
)

type conn struct {
	hub     *Hub
	ws      *websocket.Conn
	chartID uint64
	member  Member
	send    chan []byte

	closeOnce sync.Once
}

func (c *conn) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump turns inbound frames into room broadcasts until the socket fails.
func (c *conn) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.ws.Close()
		c.hub.wg.Done()
		logger.L().Info("chat member left",
			zap.Uint64("chart_id", c.chartID),
			zap.String("user_id", c.member.UserID),
		)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().Debug("chat read failed", zap.Uint64("chart_id", c.chartID), zap.Error(err))
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			in.Body = string(data)
		}
		body := strings.TrimSpace(in.Body)
		if body == "" {
			continue
		}
		c.hub.Broadcast(Message{
			ChartID: c.chartID,
			UserID:  c.member.UserID,
			Author:  c.member.Name,
			Body:    body,
			SentAt:  time.Now().UTC(),
		})
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
		c.hub.wg.Done()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
