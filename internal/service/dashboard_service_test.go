package service

import (
	"testing"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	dashboard := NewDashboardService(NewDependencies(f.db), f.catalog)

	low := f.addProduct(t, "Matches", 500, 3)
	plenty := f.addProduct(t, "Flour", 12000, 40)

	_, err := f.ledger.AppendMovement(f.ctx, f.storekeeper, AppendMovementInput{ProductID: low.ID, MovementType: model.MovementIn, Quantity: 20})
	require.NoError(t, err)
	_, err = f.approvals.Submit(f.ctx, f.storekeeper, model.StockChange{ProductID: plenty.ID, Delta: -1}, "torn bag")
	require.NoError(t, err)
	txn := f.sell(t, CartItem{ProductID: plenty.ID, Quantity: 31})
	_, err = f.reversals.RequestReversal(f.ctx, f.cashier, txn.ID, "till error")
	require.NoError(t, err)

	stats, err := dashboard.GetDashboardStats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, &DashboardStats{
		TotalProducts:    2,
		LowStockCount:    2,
		PendingMovements: 1,
		PendingRequests:  1,
		PendingReversals: 1,
	}, stats)
}

func TestCatalogGetProduct(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Honey", 60000, 6)
	f.sell(t, CartItem{ProductID: p.ID, Quantity: 2})

	got, err := f.catalog.GetProduct(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Honey", got.Name)
	assert.Equal(t, 6, got.BaseStock)
	assert.Equal(t, 4, got.CurrentStock)

	_, err = f.catalog.GetProduct(f.ctx, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
