package handler

import (
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	catalog service.CatalogService
	ledger  service.LedgerService
}

func NewProductHandler(catalog service.CatalogService, ledger service.LedgerService) *ProductHandler {
	return &ProductHandler{catalog: catalog, ledger: ledger}
}

// GetProducts lists the catalog with ledger-derived stock
// GET /api/v1/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.catalog.ListProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// GetStock returns the display figure, which may come from the cache
// GET /api/v1/products/:id/stock
func (h *ProductHandler) GetStock(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	stock, err := h.ledger.CachedStock(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": id, "current_stock": stock})
}

// GET /api/v1/products/:id/movements?status=
func (h *ProductHandler) GetMovements(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	status, err := statusQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	movements, err := h.ledger.ListMovements(c.UserContext(), repository.MovementFilter{ProductID: &id, Status: status})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}
