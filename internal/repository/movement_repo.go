package repository

import (
	"context"
	"time"

	"go-inventory-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovementRepository interface {
	WithTx(tx *gorm.DB) MovementRepository
	Create(ctx context.Context, movement *model.StockMovement) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockMovement, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.StockMovement, error)
	Decide(ctx context.Context, id uuid.UUID, to model.ApprovalStatus, approverID uuid.UUID) (bool, error)
	SumApproved(ctx context.Context, productID uuid.UUID) (int, error)
	SumApprovedByProduct(ctx context.Context) (map[uuid.UUID]int, error)
	List(ctx context.Context, filter MovementFilter) ([]model.StockMovement, error)
	CountByStatus(ctx context.Context, status model.ApprovalStatus) (int64, error)
}

type MovementFilter struct {
	ProductID     *uuid.UUID
	TransactionID *uuid.UUID
	Status        *model.ApprovalStatus
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) WithTx(tx *gorm.DB) MovementRepository {
	if tx == nil {
		return r
	}
	return &movementRepo{tx}
}

func (r *movementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *movementRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockMovement, error) {
	var movement model.StockMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *movementRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.StockMovement, error) {
	var movement model.StockMovement
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&movement, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

// Decide moves a pending movement to a terminal status. It reports false when
// the row was no longer pending.
func (r *movementRepo) Decide(ctx context.Context, id uuid.UUID, to model.ApprovalStatus, approverID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":      to,
			"approved_by": approverID,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SumApproved is the signed net of every approved movement for one product.
func (r *movementRepo) SumApproved(ctx context.Context, productID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select(model.SignedQuantitySQL).
		Where("product_id = ? AND status = ?", productID, model.StatusApproved).
		Scan(&total).Error
	return int(total), err
}

func (r *movementRepo) SumApprovedByProduct(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []struct {
		ProductID uuid.UUID
		Delta     int64
	}
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select("product_id, "+model.SignedQuantitySQL+" AS delta").
		Where("status = ?", model.StatusApproved).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		sums[row.ProductID] = int(row.Delta)
	}
	return sums, nil
}

func (r *movementRepo) List(ctx context.Context, filter MovementFilter) ([]model.StockMovement, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.TransactionID != nil {
		q = q.Where("transaction_id = ?", *filter.TransactionID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	var movements []model.StockMovement
	err := q.Order("created_at DESC").Find(&movements).Error
	return movements, err
}

func (r *movementRepo) CountByStatus(ctx context.Context, status model.ApprovalStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
