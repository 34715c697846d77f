package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/intern-engine/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamMessage is the websocket frame for the mentor stream. The
// client sends type "chat"; the server answers with "reply" or "error".
type streamMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Data      string `json:"data,omitempty"`
}

// handleMentorStream runs a mentor conversation over a websocket so the
// client keeps one connection for the whole session. Turns are handled
// sequentially per connection.
func (s *Server) handleMentorStream(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("mentor stream connected", "user_id", user.ID)

	// The connection outlives the request deadline set by the timeout
	// middleware, so turns run on a detached context tied to the
	// connection instead of r.Context()
	connCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.sendStreamMessage(conn, streamMessage{
		Type: "connected",
		Data: "Mentor is ready",
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			break
		}

		var msg streamMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendStreamMessage(conn, streamMessage{Type: "error", Data: "invalid message format"})
			continue
		}

		if msg.Type != "chat" {
			continue
		}

		resp, err := s.mentor.Chat(connCtx, user.ID, models.ChatRequest{
			SessionID: msg.SessionID,
			Message:   msg.Data,
		})
		if err != nil {
			slog.Error("mentor stream turn failed", "error", err, "user_id", user.ID)
			s.sendStreamMessage(conn, streamMessage{
				Type:      "error",
				SessionID: msg.SessionID,
				Data:      "mentor unavailable",
			})
			continue
		}

		if err := s.sendStreamMessage(conn, streamMessage{
			Type:      "reply",
			SessionID: resp.SessionID,
			Data:      resp.Reply,
		}); err != nil {
			break
		}
	}

	slog.Info("mentor stream disconnected", "user_id", user.ID)
}

func (s *Server) sendStreamMessage(conn *websocket.Conn, msg streamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal stream message", "error", err)
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send stream message", "error", err)
		return err
	}
	return nil
}
