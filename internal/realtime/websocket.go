package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TokenVerifier resolves an access token to its user id.
type TokenVerifier interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}

type wsConn struct {
	c *websocket.Conn
}

func (w wsConn) WriteText(data []byte) error {
	_ = w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, data)
}

func (w wsConn) Ping() error {
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (w wsConn) Close() error {
	return w.c.Close()
}

// UpgradeRequired rejects plain HTTP requests on the socket route.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler serves one WebSocket per request. A connection stays anonymous until
// it sends an AUTH frame whose token subject matches userId.
func (h *Hub) Handler(verifier TokenVerifier) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		client := h.Register(wsConn{c: c})
		defer h.Unregister(client)

		c.SetPongHandler(func(string) error {
			h.MarkAlive(client)
			return nil
		})

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			h.MarkAlive(client)

			var in Inbound
			if err := json.Unmarshal(msg, &in); err != nil {
				_ = h.Reply(client, Envelope{Type: TypeAuthError, Error: "malformed message"})
				continue
			}
			if in.Type != TypeAuth {
				continue
			}
			h.handleAuth(client, verifier, in)
		}
	})
}

func (h *Hub) handleAuth(client *Client, verifier TokenVerifier, in Inbound) {
	userID, err := uuid.Parse(in.UserID)
	if err != nil {
		_ = h.Reply(client, Envelope{Type: TypeAuthError, Error: "invalid user id"})
		return
	}
	if verifier != nil {
		sub, err := verifier.ParseAccessToken(in.Token)
		if err != nil || sub != userID {
			_ = h.Reply(client, Envelope{Type: TypeAuthError, Error: "authentication failed"})
			return
		}
	}
	if err := h.Authenticate(client, userID); err != nil {
		slog.Warn("realtime auth failed", "user_id", userID.String(), "error", err)
		return
	}
	_ = h.Reply(client, Envelope{Type: TypeAuthOK, Data: map[string]string{"userId": userID.String()}})
}
