package handler

import (
	"go-inventory-pos/internal/middleware"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/ws"
	"go-inventory-pos/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WSHandler struct {
	hub    *ws.Hub
	tokens *jwt.Manager
}

func NewWSHandler(hub *ws.Hub, tokens *jwt.Manager) *WSHandler {
	return &WSHandler{hub: hub, tokens: tokens}
}

// Upgrade authenticates the connection before the protocol switch. Browsers
// cannot set headers on a websocket handshake, so the token rides in ?token=.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}
	claims, err := h.tokens.ValidateToken(c.Query("token"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}
	c.Locals(middleware.LocalUserID, claims.UserID)
	c.Locals(middleware.LocalRole, model.Role(claims.Role))
	return c.Next()
}

// Serve keeps the connection registered with the hub until the client leaves.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		role, _ := c.Locals(middleware.LocalRole).(model.Role)
		h.hub.Register(ws.Client{Conn: c, Role: role})
		defer h.hub.Unregister(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
