package repository

import (
	"context"
	"testing"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, db *gorm.DB, name string, base int) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Price: decimal.NewFromInt(1000), BaseStock: base}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestSumApprovedCountsOnlyApprovedSignedQuantities(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewMovementRepo(db)
	p := seedProduct(t, db, "Mango", 10)
	other := seedProduct(t, db, "Guava", 0)
	actor := uuid.New()

	movements := []model.StockMovement{
		{ProductID: p.ID, MovementType: model.MovementIn, Quantity: 8, Status: model.StatusApproved},
		{ProductID: p.ID, MovementType: model.MovementOut, Quantity: 3, Status: model.StatusApproved},
		{ProductID: p.ID, MovementType: model.MovementAdjustment, Direction: model.DirectionDecrease, Quantity: 2, Status: model.StatusApproved},
		{ProductID: p.ID, MovementType: model.MovementAdjustment, Direction: model.DirectionIncrease, Quantity: 1, Status: model.StatusApproved},
		{ProductID: p.ID, MovementType: model.MovementIn, Quantity: 100, Status: model.StatusPending},
		{ProductID: p.ID, MovementType: model.MovementOut, Quantity: 100, Status: model.StatusRejected},
		{ProductID: other.ID, MovementType: model.MovementIn, Quantity: 5, Status: model.StatusApproved},
	}
	for i := range movements {
		movements[i].PerformedBy = actor
		require.NoError(t, repo.Create(ctx, &movements[i]))
	}

	sum, err := repo.SumApproved(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, sum)

	byProduct, err := repo.SumApprovedByProduct(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, byProduct[p.ID])
	assert.Equal(t, 5, byProduct[other.ID])

	empty, err := repo.SumApproved(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestDecideOnlyMovesPendingRows(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewMovementRepo(db)
	p := seedProduct(t, db, "Banana", 0)

	m := &model.StockMovement{ProductID: p.ID, MovementType: model.MovementIn, Quantity: 2, PerformedBy: uuid.New(), Status: model.StatusPending}
	require.NoError(t, repo.Create(ctx, m))

	approver := uuid.New()
	ok, err := repo.Decide(ctx, m.ID, model.StatusApproved, approver)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Decide(ctx, m.ID, model.StatusRejected, approver)
	require.NoError(t, err)
	assert.False(t, ok, "a terminal movement must not transition again")

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, approver, *got.ApprovedBy)
}

func TestLockManyDeduplicatesAndFailsOnUnknownID(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	a := seedProduct(t, db, "Apple", 1)
	b := seedProduct(t, db, "Pear", 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		products, err := NewProductRepo(db).WithTx(tx).LockMany(ctx, []uuid.UUID{b.ID, a.ID, b.ID})
		require.NoError(t, err)
		assert.Len(t, products, 2)

		_, err = NewProductRepo(db).WithTx(tx).LockMany(ctx, []uuid.UUID{a.ID, uuid.New()})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestProductNameIsUniqueCaseInsensitively(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewProductRepo(db)
	seedProduct(t, db, "Papaya", 0)

	found, err := repo.FindByName(ctx, "  PAPAYA")
	require.NoError(t, err)
	assert.Equal(t, "Papaya", found.Name)

	err = repo.Create(ctx, &model.Product{Name: "papaya", Price: decimal.Zero})
	assert.Error(t, err)
}
