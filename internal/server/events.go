package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kapu/influencer-insight-go/internal/constants"
	"github.com/kapu/influencer-insight-go/internal/session"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// StateEvent is one message on the session event stream.
type StateEvent struct {
	Type    string         `json:"type"`
	Session *session.State `json:"session"`
}

const eventTypeState = "state"

// handleSessionEvents streams every state of a session over a WebSocket,
// starting with the current one.
func (s *Server) handleSessionEvents(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if _, err := s.deps.Sessions.Get(ctx, id); err != nil {
		s.writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.String("session", id), zap.Error(err))
		return
	}
	defer conn.Close()

	updates := make(chan *session.State, constants.WebSocketConfig.SendBuffer)
	unsubscribe := s.deps.Sessions.Hub().Subscribe(id, func(state *session.State) {
		for {
			select {
			case updates <- state:
				return
			default:
			}
			// Full: drop the oldest snapshot, the newest one wins.
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	s.logger.Debug("WebSocket subscriber connected", zap.String("session", id))
	defer s.logger.Debug("WebSocket subscriber disconnected", zap.String("session", id))

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	current, err := s.deps.Sessions.Get(ctx, id)
	if err != nil {
		return
	}
	if err := writeState(conn, current); err != nil {
		return
	}
	lastRevision := current.Revision

	ticker := time.NewTicker(constants.WebSocketConfig.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case state := <-updates:
			if !newerThan(state, lastRevision) {
				continue
			}
			if err := writeState(conn, state); err != nil {
				s.logger.Debug("WebSocket write failed", zap.String("session", id), zap.Error(err))
				return
			}
			lastRevision = state.Revision
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(constants.WebSocketConfig.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// newerThan drops snapshots buffered before the initial read.
func newerThan(state *session.State, revision uint64) bool {
	return state != nil && state.Revision > revision
}

func writeState(conn *websocket.Conn, state *session.State) error {
	_ = conn.SetWriteDeadline(time.Now().Add(constants.WebSocketConfig.WriteTimeout))
	return conn.WriteJSON(StateEvent{Type: eventTypeState, Session: state})
}
