package handler

import (
	"time"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SalesHandler struct {
	sales     service.SalesService
	reversals service.ReversalService
}

func NewSalesHandler(sales service.SalesService, reversals service.ReversalService) *SalesHandler {
	return &SalesHandler{sales: sales, reversals: reversals}
}

// Checkout completes a sale from a cart
// POST /api/v1/transactions
func (h *SalesHandler) Checkout(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.CheckoutInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}

	txn, err := h.sales.Checkout(c.UserContext(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

// GetTransactions lists sales, newest first
// GET /api/v1/transactions?cashier_id=&status=&from=&to= (dates as YYYY-MM-DD)
func (h *SalesHandler) GetTransactions(c *fiber.Ctx) error {
	var filter repository.TransactionFilter

	if v := c.Query("cashier_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "invalid cashier_id")
		}
		filter.CashierID = &id
	}
	if v := c.Query("status"); v != "" {
		status := model.TransactionStatus(v)
		if status != model.TransactionActive && status != model.TransactionReversed {
			return badRequest(c, "status must be active or reversed")
		}
		filter.Status = &status
	}
	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			return badRequest(c, "invalid "+key+" date, expected YYYY-MM-DD")
		}
		if key == "to" {
			day = day.AddDate(0, 0, 1)
		}
		*dst = &day
	}

	transactions, err := h.sales.ListTransactions(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

// GET /api/v1/transactions/:id
func (h *SalesHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	txn, err := h.sales.GetTransaction(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txn)
}

type reversalRequestBody struct {
	Reason string `json:"reason"`
}

// RequestReversal asks the owner to void a sale
// POST /api/v1/transactions/:id/reversals
func (h *SalesHandler) RequestReversal(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var body reversalRequestBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid JSON")
	}

	req, err := h.reversals.RequestReversal(c.UserContext(), actor, id, body.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

// GET /api/v1/reversals?status=
func (h *SalesHandler) GetReversals(c *fiber.Ctx) error {
	status, err := statusQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	reversals, err := h.reversals.ListReversals(c.UserContext(), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reversals)
}

// GET /api/v1/reversals/:id
func (h *SalesHandler) GetReversal(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	req, err := h.reversals.GetReversal(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}

// POST /api/v1/reversals/:id/approve
func (h *SalesHandler) ApproveReversal(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	body, err := parseDecision(c)
	if err != nil {
		return respondError(c, err)
	}

	req, err := h.reversals.ApproveReversal(c.UserContext(), actor, id, body.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}

// POST /api/v1/reversals/:id/reject
func (h *SalesHandler) RejectReversal(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	body, err := parseDecision(c)
	if err != nil {
		return respondError(c, err)
	}

	req, err := h.reversals.RejectReversal(c.UserContext(), actor, id, body.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}
