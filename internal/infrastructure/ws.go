package infra

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WebsocketConfig heartbeat timings
type WebsocketConfig struct {
	WriteWait    time.Duration
	PongWait     time.Duration
	PingInterval time.Duration
}

// Websocket upgrades echo requests and keeps the connection alive with ping/pong
type Websocket struct {
	upgrader websocket.Upgrader
	cfg      WebsocketConfig
}

// WSSession one upgraded connection, writes are serialized by the processing loop
type WSSession struct {
	conn      *websocket.Conn
	writeWait time.Duration
	done      chan struct{}
	once      sync.Once
}

// NewWebsocket create a Websocket with default heartbeat timings
func NewWebsocket() *Websocket {
	pongWait := 30 * time.Second
	return NewWebsocketWithConfig(WebsocketConfig{
		WriteWait:    10 * time.Second,
		PongWait:     pongWait,
		PingInterval: pongWait * 9 / 10,
	})
}

func NewWebsocketWithConfig(cfg WebsocketConfig) *Websocket {
	return &Websocket{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			HandshakeTimeout: 3 * time.Second,
		},
		cfg: cfg,
	}
}

// Done closed once the connection is gone
func (s *WSSession) Done() <-chan struct{} {
	return s.done
}

// WriteJSON write v as a text frame
func (s *WSSession) WriteJSON(v interface{}) error {
	s.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
	return s.conn.WriteJSON(v)
}

func (s *WSSession) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// WithHeartbeat upgrade the request and call handler until it returns an error or the peer goes away.
// It blocks for the lifetime of the connection.
func (ws *Websocket) WithHeartbeat(c echo.Context, handler func(*WSSession) error) error {
	conn, err := ws.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// upgrader already replied
		return nil
	}

	session := &WSSession{conn: conn, writeWait: ws.cfg.WriteWait, done: make(chan struct{})}
	go ws.readRoutine(session)
	go ws.heartbeatRoutine(session)
	processRoutine(session, handler)
	return nil
}

// readRoutine drains inbound frames so that pong handlers fire
func (ws *Websocket) readRoutine(s *WSSession) {
	defer s.close()
	s.conn.SetReadDeadline(time.Now().Add(ws.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(ws.cfg.PongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (ws *Websocket) heartbeatRoutine(s *WSSession) {
	ticker := time.NewTicker(ws.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		s.close()
	}()
	for {
		select {
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ws.cfg.WriteWait)); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func processRoutine(s *WSSession, handler func(*WSSession) error) {
	defer s.close()
	for {
		if err := handler(s); err != nil {
			break
		}
	}
}
