package handler

import (
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetDashboardStats returns overview statistics
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetPending is the polling fallback for clients without a websocket: counts
// of everything waiting on an owner decision.
// GET /api/v1/notifications/pending
func (h *DashboardHandler) GetPending(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"movements": stats.PendingMovements,
		"requests":  stats.PendingRequests,
		"reversals": stats.PendingReversals,
		"total":     stats.PendingMovements + stats.PendingRequests + stats.PendingReversals,
	})
}
