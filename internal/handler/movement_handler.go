package handler

import (
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type MovementHandler struct {
	ledger service.LedgerService
}

func NewMovementHandler(ledger service.LedgerService) *MovementHandler {
	return &MovementHandler{ledger: ledger}
}

// CreateMovement records a pending ledger entry
// POST /api/v1/movements
func (h *MovementHandler) CreateMovement(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.AppendMovementInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}

	movement, err := h.ledger.AppendMovement(c.UserContext(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movement)
}

// POST /api/v1/movements/:id/approve
func (h *MovementHandler) ApproveMovement(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	movement, err := h.ledger.ApproveMovement(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movement)
}

// POST /api/v1/movements/:id/reject
func (h *MovementHandler) RejectMovement(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	movement, err := h.ledger.RejectMovement(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movement)
}
