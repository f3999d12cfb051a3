package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductRequestPopulatesTypeColumns(t *testing.T) {
	requester := uuid.New()
	productID := uuid.New()

	add := NewProductRequest(requester, AddProduct{Name: "Papaya", Price: decimal.NewFromInt(5000), InitialQuantity: 12, Category: "fruit"}, "new supplier")
	assert.Equal(t, RequestAdd, add.Type)
	assert.Equal(t, StatusPending, add.Status)
	require.NotNil(t, add.ProductName)
	assert.Equal(t, "Papaya", *add.ProductName)
	assert.Nil(t, add.ProductID)

	stock := NewProductRequest(requester, StockChange{ProductID: productID, Delta: -3}, "damaged")
	assert.Equal(t, RequestStock, stock.Type)
	require.NotNil(t, stock.RequestedQuantity)
	assert.Equal(t, -3, *stock.RequestedQuantity)
	assert.False(t, stock.RequestedPrice.Valid)

	payload, err := stock.Payload()
	require.NoError(t, err)
	assert.Equal(t, StockChange{ProductID: productID, Delta: -3}, payload)
}

func TestPayloadRejectsMalformedRows(t *testing.T) {
	id := uuid.New()
	rows := []ProductRequest{
		{Type: RequestAdd},
		{Type: RequestPrice, ProductID: &id},
		{Type: RequestStock, ProductID: &id},
		{Type: "rename"},
	}
	for _, row := range rows {
		_, err := row.Payload()
		assert.ErrorIs(t, err, ErrMalformedRequest, "type %q", row.Type)
	}
}

func TestStockMovementDelta(t *testing.T) {
	cases := []struct {
		m    StockMovement
		want int
	}{
		{StockMovement{MovementType: MovementIn, Quantity: 4}, 4},
		{StockMovement{MovementType: MovementOut, Quantity: 4}, -4},
		{StockMovement{MovementType: MovementAdjustment, Direction: DirectionIncrease, Quantity: 2}, 2},
		{StockMovement{MovementType: MovementAdjustment, Direction: DirectionDecrease, Quantity: 2}, -2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.m.Delta())
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "papaya", NormalizeName("  PaPaya "))
}
