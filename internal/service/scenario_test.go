package service

import (
	"testing"

	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A product's whole life: restock through a request, a sale, and the sale's
// reversal.
func TestRestockSellReverse(t *testing.T) {
	f := newFixture(t)
	papaya := f.addProduct(t, "Papaya", 15000, 180)
	assert.Equal(t, 180, f.stock(t, papaya.ID))

	req, err := f.approvals.Submit(f.ctx, f.storekeeper, model.StockChange{ProductID: papaya.ID, Delta: 50}, "weekly delivery")
	require.NoError(t, err)
	_, err = f.approvals.Approve(f.ctx, f.owner, req.ID, "received")
	require.NoError(t, err)
	assert.Equal(t, 230, f.stock(t, papaya.ID))

	txn := f.sell(t, CartItem{ProductID: papaya.ID, Quantity: 2})
	assert.Equal(t, 228, f.stock(t, papaya.ID))
	assert.True(t, txn.TotalAmount.Equal(papaya.Price.Mul(decimal.NewFromInt(2))))

	rev, err := f.reversals.RequestReversal(f.ctx, f.cashier, txn.ID, "wrong item")
	require.NoError(t, err)
	_, err = f.reversals.ApproveReversal(f.ctx, f.owner, rev.ID, "")
	require.NoError(t, err)

	assert.Equal(t, 230, f.stock(t, papaya.ID))
	stored, err := f.sales.GetTransaction(f.ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionReversed, stored.Status)

	assert.Equal(t, []events.Type{
		events.RequestSubmitted, events.RequestApproved,
		events.RequestSubmitted, events.RequestApproved,
		events.SaleCompleted,
		events.ReversalRequested, events.ReversalApproved,
	}, f.pub.types())
}
