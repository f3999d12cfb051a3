//go:build integration

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/apperror"
	"go-inventory-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

// newPostgresFixture runs the services against a migrated Postgres so row
// locks and the retry loop behave as in production.
func newPostgresFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "pos",
				"POSTGRES_PASSWORD": "pos",
				"POSTGRES_DB":       "pos_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := database.Connect(database.Options{
		DSN:             fmt.Sprintf("postgres://pos:pos@%s:%s/pos_test?sslmode=disable", host, port.Port()),
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
	}, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, sqlDB, "up"))

	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Microsecond)}
	pub := &recordingPublisher{}
	deps := NewDependencies(db)
	deps.Logger = zaptest.NewLogger(t)
	deps.Publisher = pub
	deps.Now = clock.Now
	deps.MaxRetries = 5

	return &fixture{
		ctx:         ctx,
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

func TestPostgresConcurrentCheckoutNeverOversells(t *testing.T) {
	f := newPostgresFixture(t)
	a := f.addProduct(t, "Durian", 90000, 5)
	b := f.addProduct(t, "Rambutan", 20000, 5)

	const buyers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		// alternate line order so lock ordering is exercised
		items := []CartItem{{ProductID: a.ID, Quantity: 1}, {ProductID: b.ID, Quantity: 1}}
		if i%2 == 1 {
			items[0], items[1] = items[1], items[0]
		}
		go func() {
			defer wg.Done()
			_, err := f.sales.Checkout(f.ctx, f.cashier, CheckoutInput{Items: items, PaymentMethod: model.PaymentCash})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindInsufficientStock), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, successes)
	assert.Zero(t, f.stock(t, a.ID))
	assert.Zero(t, f.stock(t, b.ID))
}

func TestPostgresConcurrentStockApprovals(t *testing.T) {
	f := newPostgresFixture(t)
	p := f.addProduct(t, "Salak", 12000, 3)

	// three decreases of 2 against 3 on hand: only one may land
	ids := make([]uuid.UUID, 3)
	for i := range ids {
		req, err := f.approvals.Submit(f.ctx, f.storekeeper, model.StockChange{ProductID: p.ID, Delta: -2}, "")
		require.NoError(t, err)
		ids[i] = req.ID
	}

	var wg sync.WaitGroup
	results := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, results[i] = f.approvals.Approve(f.ctx, f.owner, id, "")
		}(i, id)
	}
	wg.Wait()

	approved := 0
	for _, err := range results {
		if err == nil {
			approved++
			continue
		}
		assert.True(t, apperror.Is(err, apperror.KindInsufficientStock), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, approved)
	assert.Equal(t, 1, f.stock(t, p.ID))
}

func TestPostgresReversalRoundTrip(t *testing.T) {
	f := newPostgresFixture(t)
	p := f.addProduct(t, "Mangosteen", 30000, 10)
	txn := f.sell(t, CartItem{ProductID: p.ID, Quantity: 4})
	assert.True(t, txn.TotalAmount.Equal(decimal.NewFromInt(120000)))

	req, err := f.reversals.RequestReversal(f.ctx, f.cashier, txn.ID, "wrong item")
	require.NoError(t, err)

	_, err = f.reversals.RequestReversal(f.ctx, f.cashier, txn.ID, "again")
	assert.True(t, apperror.Is(err, apperror.KindDuplicate))

	_, err = f.reversals.ApproveReversal(f.ctx, f.owner, req.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, p.ID))

	stored, err := f.sales.GetTransaction(f.ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionReversed, stored.Status)
}
