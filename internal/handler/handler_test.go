package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-inventory-pos/internal/middleware"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/service"
	"go-inventory-pos/internal/testutil"
	"go-inventory-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	app    *fiber.App
	tokens map[model.Role]string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	tokens := jwt.NewManager("test-secret", "test", time.Hour)
	userRepo := repository.NewUserRepo(db)

	deps := service.NewDependencies(db)
	catalog := service.NewCatalogService(deps)
	ledger := service.NewLedgerService(deps)

	app := fiber.New()
	Register(app, Handlers{
		Auth:      NewAuthHandler(service.NewAuthService(userRepo, tokens)),
		Products:  NewProductHandler(catalog, ledger),
		Movements: NewMovementHandler(ledger),
		Requests:  NewRequestHandler(service.NewApprovalService(deps)),
		Sales:     NewSalesHandler(service.NewSalesService(deps), service.NewReversalService(deps)),
		Dashboard: NewDashboardHandler(service.NewDashboardService(deps, catalog)),
		Users:     NewUserHandler(service.NewUserService(userRepo)),
	}, middleware.RequireAuth(tokens, userRepo))

	api := &testAPI{app: app, tokens: map[model.Role]string{}}
	for _, role := range []model.Role{model.RoleOwner, model.RoleStorekeeper, model.RoleCashier} {
		user := &model.User{Email: string(role) + "@shop.test", FullName: string(role), Role: role, IsActive: true}
		require.NoError(t, userRepo.Create(context.Background(), user))
		token, err := tokens.GenerateToken(user.ID, user.Email, string(role))
		require.NoError(t, err)
		api.tokens[role] = token
	}
	return api
}

// call sends body as JSON and decodes the response into out when non-nil.
func (a *testAPI) call(t *testing.T, role model.Role, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token, ok := a.tokens[role]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type errorBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

func (a *testAPI) createProduct(t *testing.T, name string, price string, qty int) uuid.UUID {
	t.Helper()
	var req model.ProductRequest
	status := a.call(t, model.RoleStorekeeper, http.MethodPost, "/api/v1/requests", fiber.Map{
		"type": "add", "name": name, "price": price, "initial_quantity": qty,
	}, &req)
	require.Equal(t, http.StatusCreated, status)

	var approved model.ProductRequest
	status = a.call(t, model.RoleOwner, http.MethodPost, "/api/v1/requests/"+req.ID.String()+"/approve", nil, &approved)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, approved.ProductID)
	return *approved.ProductID
}

func TestSaleAndReversalOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct(t, "Papaya", "15000", 10)

	var txn model.Transaction
	status := api.call(t, model.RoleCashier, http.MethodPost, "/api/v1/transactions", fiber.Map{
		"items":          []fiber.Map{{"product_id": productID, "quantity": 3}},
		"payment_method": "cash",
	}, &txn)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "45000", txn.TotalAmount.String())

	var stock struct {
		CurrentStock int `json:"current_stock"`
	}
	require.Equal(t, http.StatusOK, api.call(t, model.RoleCashier, http.MethodGet, "/api/v1/products/"+productID.String()+"/stock", nil, &stock))
	assert.Equal(t, 7, stock.CurrentStock)

	var rev model.ReversalRequest
	status = api.call(t, model.RoleCashier, http.MethodPost, "/api/v1/transactions/"+txn.ID.String()+"/reversals", fiber.Map{"reason": "wrong item"}, &rev)
	require.Equal(t, http.StatusCreated, status)

	var pending map[string]int
	require.Equal(t, http.StatusOK, api.call(t, model.RoleOwner, http.MethodGet, "/api/v1/notifications/pending", nil, &pending))
	assert.Equal(t, 1, pending["reversals"])

	status = api.call(t, model.RoleOwner, http.MethodPost, "/api/v1/reversals/"+rev.ID.String()+"/approve", fiber.Map{"comment": "ok"}, nil)
	require.Equal(t, http.StatusOK, status)

	var product model.ProductStock
	require.Equal(t, http.StatusOK, api.call(t, model.RoleCashier, http.MethodGet, "/api/v1/products/"+productID.String(), nil, &product))
	assert.Equal(t, 10, product.CurrentStock)

	var again errorBody
	status = api.call(t, model.RoleOwner, http.MethodPost, "/api/v1/reversals/"+rev.ID.String()+"/approve", nil, &again)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE", again.Code)
}

func TestErrorKindsMapToStatusCodes(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct(t, "Mango", "5000", 1)

	var body errorBody
	status := api.call(t, model.RoleCashier, http.MethodPost, "/api/v1/transactions", fiber.Map{
		"items":          []fiber.Map{{"product_id": productID, "quantity": 2}},
		"payment_method": "cash",
	}, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.EqualValues(t, 1, body.Details["available"])

	body = errorBody{}
	status = api.call(t, model.RoleStorekeeper, http.MethodPost, "/api/v1/requests", fiber.Map{"type": "add", "name": "MANGO", "price": "1"}, &body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body.Code)

	body = errorBody{}
	status = api.call(t, model.RoleStorekeeper, http.MethodPost, "/api/v1/requests", fiber.Map{"type": "rename"}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body.Code)

	body = errorBody{}
	status = api.call(t, model.RoleOwner, http.MethodGet, "/api/v1/products/not-a-uuid", nil, &body)
	assert.Equal(t, http.StatusBadRequest, status)

	body = errorBody{}
	status = api.call(t, model.RoleOwner, http.MethodGet, "/api/v1/transactions/"+uuid.NewString(), nil, &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Code)

	body = errorBody{}
	status = api.call(t, model.RoleOwner, http.MethodGet, "/api/v1/requests?status=maybe", nil, &body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRejectWithoutCommentIsRefused(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct(t, "Lime", "1000", 0)

	var req model.ProductRequest
	require.Equal(t, http.StatusCreated, api.call(t, model.RoleStorekeeper, http.MethodPost, "/api/v1/requests",
		fiber.Map{"type": "stock", "product_id": productID, "delta": 5}, &req))

	var body errorBody
	status := api.call(t, model.RoleOwner, http.MethodPost, "/api/v1/requests/"+req.ID.String()+"/reject", nil, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body.Code)

	var rejected model.ProductRequest
	status = api.call(t, model.RoleOwner, http.MethodPost, "/api/v1/requests/"+req.ID.String()+"/reject", fiber.Map{"comment": "overstocked"}, &rejected)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.StatusRejected, rejected.Status)
}

func TestAuthAndRoleGuards(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.call(t, "", http.MethodGet, "/api/v1/products", nil, nil))

	var body map[string]any
	status := api.call(t, model.RoleCashier, http.MethodPost, "/api/v1/requests", fiber.Map{"type": "stock"}, &body)
	assert.Equal(t, http.StatusForbidden, status)

	status = api.call(t, model.RoleStorekeeper, http.MethodPost, "/api/v1/transactions", fiber.Map{}, &body)
	assert.Equal(t, http.StatusForbidden, status)

	var me model.UserResponse
	require.Equal(t, http.StatusOK, api.call(t, model.RoleStorekeeper, http.MethodGet, "/api/v1/auth/me", nil, &me))
	assert.Equal(t, model.RoleStorekeeper, me.Role)
}

func TestOwnerManagesUsers(t *testing.T) {
	api := newTestAPI(t)

	var created struct {
		Data model.UserResponse `json:"data"`
	}
	status := api.call(t, model.RoleOwner, http.MethodPost, "/api/v1/users", fiber.Map{
		"email": "New.Cashier@Shop.test", "full_name": "New Cashier", "role": "cashier",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "new.cashier@shop.test", created.Data.Email)

	var body errorBody
	status = api.call(t, model.RoleOwner, http.MethodPost, "/api/v1/users", fiber.Map{
		"email": "new.cashier@shop.test", "full_name": "Again", "role": "cashier",
	}, &body)
	assert.Equal(t, http.StatusConflict, status)

	status = api.call(t, model.RoleOwner, http.MethodPut, "/api/v1/users/"+created.Data.ID.String()+"/role", fiber.Map{"role": "storekeeper"}, nil)
	assert.Equal(t, http.StatusOK, status)

	var users []model.UserResponse
	require.Equal(t, http.StatusOK, api.call(t, model.RoleOwner, http.MethodGet, "/api/v1/users", nil, &users))
	assert.Len(t, users, 4)
}
