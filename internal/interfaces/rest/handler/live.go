package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
	infra "github.com/pot-code/focus-tracker/internal/infrastructure"
	"github.com/pot-code/focus-tracker/internal/infrastructure/auth"
	"github.com/pot-code/focus-tracker/internal/infrastructure/event"
)

var errStreamClosed = errors.New("stream closed")

// LiveHandler pushes the caller's activity events over a websocket
type LiveHandler struct {
	hub       *event.Hub
	websocket *infra.Websocket
	jwtUtil   *auth.JWTUtil
}

func NewLiveHandler(Hub *event.Hub, Websocket *infra.Websocket, JWTUtil *auth.JWTUtil) *LiveHandler {
	return &LiveHandler{Hub, Websocket, JWTUtil}
}

func (lh *LiveHandler) HandleStream(c echo.Context) error {
	claims := lh.jwtUtil.GetContextToken(c)
	events, cancel := lh.hub.Subscribe(claims.UID)
	defer cancel()

	return lh.websocket.WithHeartbeat(c, func(s *infra.WSSession) error {
		select {
		case evt, ok := <-events:
			if !ok {
				return errStreamClosed
			}
			return s.WriteJSON(evt)
		case <-s.Done():
			return errStreamClosed
		}
	})
}
