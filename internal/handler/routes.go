package handler

import (
	"go-inventory-pos/internal/middleware"
	"go-inventory-pos/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything mounted under /api/v1.
type Handlers struct {
	Auth      *AuthHandler
	Products  *ProductHandler
	Movements *MovementHandler
	Requests  *RequestHandler
	Sales     *SalesHandler
	Dashboard *DashboardHandler
	Users     *UserHandler
}

// Register mounts the API behind requireAuth. Role guards here reject early;
// services check the same preconditions again.
func Register(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	const (
		owner       = model.RoleOwner
		storekeeper = model.RoleStorekeeper
		cashier     = model.RoleCashier
	)

	api := app.Group("/api/v1", requireAuth)

	// Auth
	api.Get("/auth/me", h.Auth.Me)
	api.Post("/auth/heartbeat", h.Auth.Heartbeat)

	// Dashboard
	api.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	api.Get("/notifications/pending", middleware.RequireRole(owner), h.Dashboard.GetPending)

	// Catalog
	api.Get("/products", h.Products.GetProducts)
	api.Get("/products/:id", h.Products.GetProduct)
	api.Get("/products/:id/stock", h.Products.GetStock)
	api.Get("/products/:id/movements", middleware.RequireRole(owner, storekeeper), h.Products.GetMovements)

	// Ledger
	api.Post("/movements", middleware.RequireRole(owner, storekeeper), h.Movements.CreateMovement)
	api.Post("/movements/:id/approve", middleware.RequireRole(owner), h.Movements.ApproveMovement)
	api.Post("/movements/:id/reject", middleware.RequireRole(owner), h.Movements.RejectMovement)

	// Product requests
	api.Get("/requests", middleware.RequireRole(owner, storekeeper), h.Requests.GetRequests)
	api.Get("/requests/:id", middleware.RequireRole(owner, storekeeper), h.Requests.GetRequest)
	api.Post("/requests", middleware.RequireRole(owner, storekeeper), h.Requests.Submit)
	api.Post("/requests/:id/approve", middleware.RequireRole(owner), h.Requests.Approve)
	api.Post("/requests/:id/reject", middleware.RequireRole(owner), h.Requests.Reject)

	// Sales
	api.Get("/transactions", middleware.RequireRole(owner, cashier), h.Sales.GetTransactions)
	api.Get("/transactions/:id", middleware.RequireRole(owner, cashier), h.Sales.GetTransaction)
	api.Post("/transactions", middleware.RequireRole(owner, cashier), h.Sales.Checkout)
	api.Post("/transactions/:id/reversals", middleware.RequireRole(owner, cashier), h.Sales.RequestReversal)

	// Reversals
	api.Get("/reversals", middleware.RequireRole(owner, cashier), h.Sales.GetReversals)
	api.Get("/reversals/:id", middleware.RequireRole(owner, cashier), h.Sales.GetReversal)
	api.Post("/reversals/:id/approve", middleware.RequireRole(owner), h.Sales.ApproveReversal)
	api.Post("/reversals/:id/reject", middleware.RequireRole(owner), h.Sales.RejectReversal)

	// Users
	api.Get("/users", middleware.RequireRole(owner), h.Users.GetUsers)
	api.Get("/users/:id", middleware.RequireRole(owner), h.Users.GetUser)
	api.Post("/users", middleware.RequireRole(owner), h.Users.CreateUser)
	api.Put("/users/:id/role", middleware.RequireRole(owner), h.Users.UpdateRole)
}
