package repository

import (
	"context"
	"time"

	"go-inventory-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReversalRepository interface {
	WithTx(tx *gorm.DB) ReversalRepository
	Create(ctx context.Context, req *model.ReversalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReversalRequest, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.ReversalRequest, error)
	HasPending(ctx context.Context, transactionID uuid.UUID) (bool, error)
	Decide(ctx context.Context, id uuid.UUID, to model.ApprovalStatus, approverID uuid.UUID, comment string, at time.Time) (bool, error)
	List(ctx context.Context, status *model.ApprovalStatus) ([]model.ReversalRequest, error)
	CountByStatus(ctx context.Context, status model.ApprovalStatus) (int64, error)
}

type reversalRepo struct {
	db *gorm.DB
}

func NewReversalRepo(db *gorm.DB) ReversalRepository {
	return &reversalRepo{db}
}

func (r *reversalRepo) WithTx(tx *gorm.DB) ReversalRepository {
	if tx == nil {
		return r
	}
	return &reversalRepo{tx}
}

func (r *reversalRepo) Create(ctx context.Context, req *model.ReversalRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *reversalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ReversalRequest, error) {
	var req model.ReversalRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *reversalRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.ReversalRequest, error) {
	var req model.ReversalRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *reversalRepo) HasPending(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ReversalRequest{}).
		Where("transaction_id = ? AND status = ?", transactionID, model.StatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *reversalRepo) Decide(ctx context.Context, id uuid.UUID, to model.ApprovalStatus, approverID uuid.UUID, comment string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ReversalRequest{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":        to,
			"approved_by":   approverID,
			"owner_comment": comment,
			"decided_at":    at,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *reversalRepo) List(ctx context.Context, status *model.ApprovalStatus) ([]model.ReversalRequest, error) {
	q := r.db.WithContext(ctx).Model(&model.ReversalRequest{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var requests []model.ReversalRequest
	err := q.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *reversalRepo) CountByStatus(ctx context.Context, status model.ApprovalStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ReversalRequest{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
