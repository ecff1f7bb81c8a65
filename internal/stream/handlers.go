package stream

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 5 * time.Second
	maxClientFrame = 512
)

// RegisterRoutes exposes a session's event feed over websocket. The goggles
// display and speech client connect here; inbound frames are only read to
// notice disconnects.
func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})

	r.Get("/ws/:sessionID", websocket.New(func(c *websocket.Conn) {
		sessionID := c.Params("sessionID")
		c.SetReadLimit(maxClientFrame)

		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteJSON(Event{Type: "connected", Data: sessionID}); err != nil {
			return
		}
		client := hub.Register(sessionID)
		hub.log.Debug("listener joined", "session", sessionID)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range client.Send {
				_ = c.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					hub.log.Debug("listener write failed", "session", sessionID, "err", err)
					return
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
		hub.log.Debug("listener left", "session", sessionID)
	}))

	r.Get("/sessions/:sessionID", func(c *fiber.Ctx) error {
		sessionID := c.Params("sessionID")
		return c.JSON(fiber.Map{"session_id": sessionID, "listeners": hub.Listeners(sessionID)})
	})
}
