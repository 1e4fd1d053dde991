package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS middleware already vetted the origin of browser callers.
	CheckOrigin: func(*http.Request) bool { return true },
}

type countdownMessage struct {
	RemainingSeconds int    `json:"remaining_seconds"`
	Submitted        bool   `json:"submitted"`
	Error            string `json:"error,omitempty"`
}

const countdownWriteWait = 5 * time.Second

// countdown streams the remaining time of a session over a WebSocket,
// one message per tick. When time runs out the session is auto-submitted,
// a final message with submitted=true is sent and the socket is closed.
func (s *Server) countdown(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownSession(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "countdown upgrade failed", "session_id", sess.ID, "error", err)
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.countdownTick)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		msg := countdownMessage{Submitted: sess.Submitted}
		if !sess.Submitted {
			remaining, err := s.sessions.TimeRemainingSeconds(ctx, sess)
			if err != nil {
				msg.Error = err.Error()
			}
			msg.RemainingSeconds = remaining
			msg.Submitted = err == nil && remaining == 0
		}

		conn.SetWriteDeadline(time.Now().Add(countdownWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
		if msg.Submitted || msg.Error != "" {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
				time.Now().Add(countdownWriteWait))
			return
		}

		select {
		case <-ticker.C:
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
