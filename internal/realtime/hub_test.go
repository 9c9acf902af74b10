package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func hubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, r.URL.Query().Get("session"), func(origin string) bool {
			return origin == "http://allowed.test"
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	welcome := readJSON(t, conn)
	require.Equal(t, "welcome", welcome["type"])
	require.Equal(t, sessionID, welcome["sessionId"])
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestHubPublishReachesSessionSubscribers(t *testing.T) {
	hub, _ := startHub(t)
	srv := hubServer(t, hub)

	a1 := dial(t, srv, "s1")
	a2 := dial(t, srv, "s1")
	other := dial(t, srv, "s2")

	assert.Equal(t, 3, hub.Clients(context.Background()))

	require.NoError(t, hub.Publish(context.Background(), "s1", map[string]any{"type": "tick", "time": 1.5}))

	for _, c := range []*websocket.Conn{a1, a2} {
		m := readJSON(t, c)
		assert.Equal(t, "tick", m["type"])
		assert.Equal(t, 1.5, m["time"])
	}

	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	var nerr net.Error
	require.ErrorAs(t, err, &nerr)
	assert.True(t, nerr.Timeout())
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, _ := startHub(t)
	srv := hubServer(t, hub)

	c := dial(t, srv, "s1")
	require.Equal(t, 1, hub.Clients(context.Background()))
	require.NoError(t, c.Close())

	assert.Eventually(t, func() bool {
		return hub.Clients(context.Background()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	hub, _ := startHub(t)
	srv := hubServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=s1"
	header := http.Header{"Origin": []string{"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://allowed.test")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestHubStopDisconnectsClients(t *testing.T) {
	hub, cancel := startHub(t)
	srv := hubServer(t, hub)
	c := dial(t, srv, "s1")

	cancel()

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := c.ReadMessage()
	require.Error(t, err)

	assert.Eventually(t, func() bool {
		return hub.Publish(context.Background(), "s1", "x") == ErrHubStopped
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.Clients(context.Background()))
}
