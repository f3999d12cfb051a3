package handler

import (
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RequestHandler struct {
	approvals service.ApprovalService
}

func NewRequestHandler(approvals service.ApprovalService) *RequestHandler {
	return &RequestHandler{approvals: approvals}
}

// SubmitRequest is the wire form of a product request. Type selects which of
// the remaining fields are read.
type SubmitRequest struct {
	Type   model.RequestType `json:"type"`
	Reason string            `json:"reason"`

	// add
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	InitialQuantity int             `json:"initial_quantity"`
	Category        string          `json:"category"`

	// price, stock
	ProductID uuid.UUID       `json:"product_id"`
	NewPrice  decimal.Decimal `json:"new_price"`
	Delta     int             `json:"delta"`
}

func (r SubmitRequest) payload() (model.RequestPayload, bool) {
	switch r.Type {
	case model.RequestAdd:
		return model.AddProduct{Name: r.Name, Price: r.Price, InitialQuantity: r.InitialQuantity, Category: r.Category}, true
	case model.RequestPrice:
		return model.PriceChange{ProductID: r.ProductID, NewPrice: r.NewPrice}, true
	case model.RequestStock:
		return model.StockChange{ProductID: r.ProductID, Delta: r.Delta}, true
	}
	return nil, false
}

// POST /api/v1/requests
func (h *RequestHandler) Submit(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return respondError(c, err)
	}
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}
	payload, ok := req.payload()
	if !ok {
		return badRequest(c, "type must be one of add, price, stock")
	}

	created, err := h.approvals.Submit(c.UserContext(), actor, payload, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GET /api/v1/requests?status=
func (h *RequestHandler) GetRequests(c *fiber.Ctx) error {
	status, err := statusQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	requests, err := h.approvals.ListRequests(c.UserContext(), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requests)
}

// GET /api/v1/requests/:id
func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	req, err := h.approvals.GetRequest(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}

// POST /api/v1/requests/:id/approve
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
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

	req, err := h.approvals.Approve(c.UserContext(), actor, id, body.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}

// POST /api/v1/requests/:id/reject
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
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

	req, err := h.approvals.Reject(c.UserContext(), actor, id, body.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}
