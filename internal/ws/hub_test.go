package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeleague/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncEvent struct {
	Type    string `json:"type"`
	DateKey string `json:"date_key"`
}

func startServer(t *testing.T, hub *Hub) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("ws-test-secret")

	r := gin.New()
	r.GET("/ws", HandleWS(hub, ""))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string, userID int64) *websocket.Conn {
	t.Helper()
	token, err := service.GenerateJWT(userID)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var ready Message
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&ready))
	require.Equal(t, MsgReady, ready.Type)
	return conn
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub := NewHub()
	url := startServer(t, hub)

	a := dial(t, url, 1)
	b := dial(t, url, 2)
	require.Equal(t, 2, hub.Count())

	hub.Broadcast(syncEvent{Type: "sync_completed", DateKey: "2026-02-20"})

	for _, conn := range []*websocket.Conn{a, b} {
		var got syncEvent
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, syncEvent{Type: "sync_completed", DateKey: "2026-02-20"}, got)
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := NewHub()
	conn := dial(t, startServer(t, hub), 7)

	require.NoError(t, conn.WriteJSON(Message{Type: MsgPing}))

	var got Message
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, MsgPong, got.Type)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub := NewHub()
	conn := dial(t, startServer(t, hub), 3)
	require.Equal(t, 1, hub.Count())

	conn.Close()

	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandleWS_RejectsMissingOrBadToken(t *testing.T) {
	hub := NewHub()
	url := startServer(t, hub)

	for _, suffix := range []string{"", "?token=garbage"} {
		_, resp, err := websocket.DefaultDialer.Dial(url+suffix, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	assert.Zero(t, hub.Count())
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: 9, Send: make(chan []byte, 1), Hub: hub}
	hub.Register(c)

	hub.Broadcast(syncEvent{Type: "one"})
	hub.Broadcast(syncEvent{Type: "two"})

	assert.Zero(t, hub.Count())
	msg, ok := <-c.Send
	assert.True(t, ok)
	assert.Contains(t, string(msg), `"one"`)
	_, ok = <-c.Send
	assert.False(t, ok, "send channel closed after drop")
}
