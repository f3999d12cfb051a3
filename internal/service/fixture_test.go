package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingPublisher) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	clock *fakeClock
	pub   *recordingPublisher

	ledger    LedgerService
	approvals ApprovalService
	sales     SalesService
	reversals ReversalService
	catalog   CatalogService

	owner       model.Actor
	storekeeper model.Actor
	cashier     model.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	pub := &recordingPublisher{}

	deps := NewDependencies(db)
	deps.Logger = zaptest.NewLogger(t)
	deps.Publisher = pub
	deps.Now = clock.Now
	deps.ReversalWindow = 48 * time.Hour

	return &fixture{
		ctx:         context.Background(),
		db:          db,
		clock:       clock,
		pub:         pub,
		ledger:      NewLedgerService(deps),
		approvals:   NewApprovalService(deps),
		sales:       NewSalesService(deps),
		reversals:   NewReversalService(deps),
		catalog:     NewCatalogService(deps),
		owner:       model.Actor{UserID: uuid.New(), Role: model.RoleOwner},
		storekeeper: model.Actor{UserID: uuid.New(), Role: model.RoleStorekeeper},
		cashier:     model.Actor{UserID: uuid.New(), Role: model.RoleCashier},
	}
}

// addProduct creates a product through the add-request workflow.
func (f *fixture) addProduct(t *testing.T, name string, price int64, baseStock int) *model.Product {
	t.Helper()
	req, err := f.approvals.Submit(f.ctx, f.storekeeper, model.AddProduct{
		Name:            name,
		Price:           decimal.NewFromInt(price),
		InitialQuantity: baseStock,
		Category:        "produce",
	}, "new line")
	require.NoError(t, err)

	approved, err := f.approvals.Approve(f.ctx, f.owner, req.ID, "")
	require.NoError(t, err)
	require.NotNil(t, approved.ProductID)

	var product model.Product
	require.NoError(t, f.db.First(&product, "id = ?", *approved.ProductID).Error)
	return &product
}

func (f *fixture) stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	stock, err := f.ledger.CurrentStock(f.ctx, productID)
	require.NoError(t, err)
	return stock
}

func (f *fixture) sell(t *testing.T, items ...CartItem) *model.Transaction {
	t.Helper()
	txn, err := f.sales.Checkout(f.ctx, f.cashier, CheckoutInput{Items: items, PaymentMethod: model.PaymentCash})
	require.NoError(t, err)
	return txn
}

func (f *fixture) count(t *testing.T, m any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}
