package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	hub := runHub(t)
	a := &Client{ID: "a", Hub: hub, Send: make(chan []byte, 4)}
	b := &Client{ID: "b", Hub: hub, Send: make(chan []byte, 4)}
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(MessageNotification, map[string]string{"id": "n1"})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, MessageNotification, msg.Type)
		case <-time.After(time.Second):
			t.Fatalf("client %s got nothing", c.ID)
		}
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := runHub(t)
	c := &Client{ID: "a", Hub: hub, Send: make(chan []byte, 1)}
	hub.Register(c)
	hub.Unregister(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, originAllowed("", []string{"https://app.example.com"}))
	assert.True(t, originAllowed("https://APP.example.com", []string{"https://app.example.com"}))
	assert.True(t, originAllowed("https://x.dev", []string{"*"}))
	assert.False(t, originAllowed("https://evil.dev", []string{"https://app.example.com"}))
}

func TestHandler_RejectsMissingAndBadTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewHub(), func(token string) (string, error) {
		return "", assert.AnError
	}, []string{"*"})
	router := gin.New()
	router.GET("/ws", handler.Serve)

	for _, target := range []string{"/ws", "/ws?token=bad"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}

func TestHandler_UpgradesAndStreams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := runHub(t)
	handler := NewHandler(hub, func(token string) (string, error) { return "user-1", nil }, []string{"*"})
	router := gin.New()
	router.GET("/ws", handler.Serve)
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=ok"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	hub.Broadcast(MessageNotification, map[string]string{"id": "n1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"notification"`)
}
