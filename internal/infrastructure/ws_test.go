package infra

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsocketWritesUntilHandlerFails(t *testing.T) {
	ws := NewWebsocketWithConfig(WebsocketConfig{
		WriteWait:    time.Second,
		PongWait:     time.Second,
		PingInterval: 100 * time.Millisecond,
	})
	finished := make(chan struct{})

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		defer close(finished)
		n := 0
		return ws.WithHeartbeat(c, func(s *WSSession) error {
			if n == 2 {
				return errors.New("done")
			}
			n++
			return s.WriteJSON(map[string]int{"n": n})
		})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	for want := 1; want <= 2; want++ {
		var msg map[string]int
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, want, msg["n"])
	}

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return")
	}
}
