package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"garage_opener/internal/door"
	"garage_opener/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait     = 10 * time.Second
	wsPongWait      = 60 * time.Second
	wsPingEvery     = wsPongWait * 9 / 10
	wsReadLimit     = 512 // clients only send control frames
	defaultResend   = time.Second
	maxResend       = 10 * time.Second
	frameDoor       = "door"
	resendQueryName = "interval"
)

// doorFrame is the payload of every stream message: the door as seen by the
// store plus the transitions still waiting to fire.
type doorFrame struct {
	State  models.DoorState    `json:"state"`
	Timers []door.PendingTimer `json:"timers"`
}

type wsEnvelope struct {
	Type string    `json:"type"`
	Data doorFrame `json:"data"`
}

// The API is meant for a trusted LAN; origin checks are left to the token.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// doorStream pushes door frames to one websocket client.
type doorStream struct {
	h    *Handler
	conn *websocket.Conn
}

// @Summary      Door state stream
// @Description  Websocket. Sends a door frame on connect, on every state change and every `interval` (Go duration or milliseconds, max 10s).
// @Tags         door
// @Param        interval  query  string  false  "Resend interval"
// @Param        token     query  string  false  "JWT when no Authorization header can be sent"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	resend := resendInterval(c.Query(resendQueryName))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("door_stream_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	s := &doorStream{h: h, conn: conn}
	s.run(c.Request.Context(), resend)
}

func (s *doorStream) run(ctx context.Context, resend time.Duration) {
	s.conn.SetReadLimit(wsReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	gone := make(chan struct{})
	go s.drain(gone)

	// Subscribe first so a change between the initial frame and the loop is not lost.
	changes, unsubscribe := s.h.services.Monitoring.Subscribe()
	defer unsubscribe()

	resendTicker := time.NewTicker(resend)
	defer resendTicker.Stop()
	pingTicker := time.NewTicker(wsPingEvery)
	defer pingTicker.Stop()

	if !s.send(ctx, s.h.services.Monitoring.GetState(ctx)) {
		return
	}
	for {
		select {
		case <-gone:
			return
		case <-ctx.Done():
			return
		case st, ok := <-changes:
			if !ok || !s.send(ctx, st) {
				return
			}
		case <-resendTicker.C:
			if !s.send(ctx, s.h.services.Monitoring.GetState(ctx)) {
				return
			}
		case <-pingTicker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.closed("ping", err)
				return
			}
		}
	}
}

// send writes one door frame; false means the client is gone.
func (s *doorStream) send(ctx context.Context, st models.DoorState) bool {
	frame := doorFrame{State: st, Timers: s.h.services.Monitoring.PendingTimers(ctx)}
	if frame.Timers == nil {
		frame.Timers = []door.PendingTimer{}
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := s.conn.WriteJSON(wsEnvelope{Type: frameDoor, Data: frame}); err != nil {
		s.closed("write", err)
		return false
	}
	return true
}

// drain reads until the client disconnects so control frames are processed.
func (s *doorStream) drain(gone chan<- struct{}) {
	defer close(gone)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.closed("read", err)
			return
		}
	}
}

func (s *doorStream) closed(op string, err error) {
	if s.h.log != nil {
		s.h.log.Infow("door_stream_closed", "op", op, "err", err)
	}
}

// resendInterval accepts a Go duration ("2s") or bare milliseconds ("250").
// Anything unparsable, non-positive or above maxResend falls back to the default.
func resendInterval(raw string) time.Duration {
	if raw == "" {
		return defaultResend
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		ms, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return defaultResend
		}
		d = time.Duration(ms) * time.Millisecond
	}
	if d <= 0 || d > maxResend {
		return defaultResend
	}
	return d
}
