// Package chat fans messages out to everyone viewing the same chart.
//
// Delivery is at-most-once: a member whose send buffer is full misses the
// message, and nothing is replayed to members who join later.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chartviz/engine/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// ErrClosed is returned by Serve once the hub has shut down.
var ErrClosed = errors.New("chat: hub closed")

// Member identifies the authenticated user behind a connection.
type Member struct {
	UserID string
	Name   string
}

// Message is what every member of a room receives.
type Message struct {
	ChartID uint64    `json:"chartId"`
	UserID  string    `json:"userId"`
	Author  string    `json:"author"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt"`
}

type inbound struct {
	Body string `json:"body"`
}

// Hub tracks the open connections of every chart room.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uint64]map[*conn]struct{}
	closed bool

	wg       sync.WaitGroup
	dropped  atomic.Uint64
	upgrader websocket.Upgrader
}

// NewHub returns an empty hub. allowedOrigins of nil or "*" accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{rooms: make(map[uint64]map[*conn]struct{})}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// Serve upgrades the request and joins the connection to chartID's room.
// Authorization must already have been checked by the caller.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, chartID uint64, m Member) error {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, ErrClosed.Error(), http.StatusServiceUnavailable)
		return ErrClosed
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		return err
	}

	c := &conn{hub: h, ws: ws, chartID: chartID, member: m, send: make(chan []byte, sendBuffer)}
	if !h.join(c) {
		_ = ws.Close()
		return ErrClosed
	}
	logger.L().Info("chat member joined",
		zap.Uint64("chart_id", chartID),
		zap.String("user_id", m.UserID),
	)

	go c.writePump()
	go c.readPump()
	return nil
}

// Broadcast queues msg for every member of its room and returns how many accepted it.
func (h *Hub) Broadcast(msg Message) int {
	b, err := json.Marshal(msg)
	if err != nil {
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.rooms[msg.ChartID] {
		select {
		case c.send <- b:
			delivered++
		default:
			h.dropped.Add(1)
		}
	}
	return delivered
}

// RoomSize returns the number of open connections for chartID.
func (h *Hub) RoomSize(chartID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chartID])
}

// Dropped counts messages discarded because a member was too slow.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Run blocks until ctx is done and then closes the hub.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()
	h.Close()
	return nil
}

// Close disconnects every member and waits for their goroutines to exit.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.wg.Wait()
		return
	}
	h.closed = true
	var all []*conn
	for _, room := range h.rooms {
		for c := range room {
			all = append(all, c)
		}
	}
	h.rooms = make(map[uint64]map[*conn]struct{})
	h.mu.Unlock()

	for _, c := range all {
		c.closeSend()
	}
	h.wg.Wait()
}

func (h *Hub) join(c *conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	room, ok := h.rooms[c.chartID]
	if !ok {
		room = make(map[*conn]struct{})
		h.rooms[c.chartID] = room
	}
	room[c] = struct{}{}
	// one for each pump
	h.wg.Add(2)
	return true
}

func (h *Hub) leave(c *conn) {
	h.mu.Lock()
	if room, ok := h.rooms[c.chartID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.chartID)
		}
	}
	h.mu.Unlock()
	c.closeSend()
}
