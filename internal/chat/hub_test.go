package chat

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/chartviz/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Use(zap.NewNop())
	goleak.VerifyTestMain(m)
}

func newRoomServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(r.URL.Query().Get("chart"), 10, 64)
		if err != nil {
			http.Error(w, "bad chart", http.StatusBadRequest)
			return
		}
		user := r.URL.Query().Get("user")
		_ = h.Serve(w, r, id, Member{UserID: user, Name: strings.ToUpper(user)})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, chart int, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?chart=" + strconv.Itoa(chart) + "&user=" + user
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var m Message
	require.NoError(t, ws.ReadJSON(&m))
	return m
}

func TestRoomsAreIsolated(t *testing.T) {
	h := NewHub(nil)
	srv := newRoomServer(t, h)

	alice := dial(t, srv, 1, "alice")
	bob := dial(t, srv, 1, "bob")
	carol := dial(t, srv, 2, "carol")
	require.Eventually(t, func() bool { return h.RoomSize(1) == 2 && h.RoomSize(2) == 1 },
		5*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.WriteJSON(inbound{Body: "hello orchard"}))
	require.NoError(t, carol.WriteJSON(inbound{Body: "hello grove"}))

	for _, ws := range []*websocket.Conn{alice, bob} {
		m := readMessage(t, ws)
		assert.Equal(t, uint64(1), m.ChartID)
		assert.Equal(t, "alice", m.UserID)
		assert.Equal(t, "ALICE", m.Author)
		assert.Equal(t, "hello orchard", m.Body)
		assert.False(t, m.SentAt.IsZero())
	}
	m := readMessage(t, carol)
	assert.Equal(t, "hello grove", m.Body)
	assert.Equal(t, uint64(2), m.ChartID)

	require.NoError(t, bob.Close())
	require.Eventually(t, func() bool { return h.RoomSize(1) == 1 }, 5*time.Second, 10*time.Millisecond)

	h.Close()
	for _, ws := range []*websocket.Conn{alice, carol} {
		_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, _, err := ws.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)
		_ = ws.Close()
	}
	assert.Equal(t, 0, h.RoomSize(1))
}

func TestServeAfterCloseIsRejected(t *testing.T) {
	h := NewHub(nil)
	h.Close()
	srv := newRoomServer(t, h)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?chart=1&user=dave"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestBroadcastDropsForSlowMembers(t *testing.T) {
	h := NewHub(nil)
	slow := &conn{chartID: 9, send: make(chan []byte, 1)}
	fast := &conn{chartID: 9, send: make(chan []byte, 4)}
	h.rooms[9] = map[*conn]struct{}{slow: {}, fast: {}}

	assert.Equal(t, 2, h.Broadcast(Message{ChartID: 9, Body: "one"}))
	assert.Equal(t, 1, h.Broadcast(Message{ChartID: 9, Body: "two"}))
	assert.Equal(t, uint64(1), h.Dropped())
	assert.Len(t, fast.send, 2)
	assert.Len(t, slow.send, 1)

	assert.Equal(t, 0, h.Broadcast(Message{ChartID: 10, Body: "nobody"}))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://charts.example"})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(r))
	r.Header.Set("Origin", "https://charts.example")
	assert.True(t, check(r))
	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r))
	assert.True(t, originChecker(nil)(r))
}
