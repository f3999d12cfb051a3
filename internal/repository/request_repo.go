package repository

import (
	"context"
	"time"

	"go-inventory-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestRepository interface {
	WithTx(tx *gorm.DB) RequestRepository
	Create(ctx context.Context, req *model.ProductRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductRequest, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.ProductRequest, error)
	Decide(ctx context.Context, id uuid.UUID, decision RequestDecision) (bool, error)
	List(ctx context.Context, status *model.ApprovalStatus) ([]model.ProductRequest, error)
	CountByStatus(ctx context.Context, status model.ApprovalStatus) (int64, error)
}

// RequestDecision is the terminal write for a product request, including the
// links to what an approval produced.
type RequestDecision struct {
	Status          model.ApprovalStatus
	DecidedBy       uuid.UUID
	Comment         string
	DecidedAt       time.Time
	ProductID       *uuid.UUID
	StockMovementID *uuid.UUID
}

type requestRepo struct {
	db *gorm.DB
}

func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db}
}

func (r *requestRepo) WithTx(tx *gorm.DB) RequestRepository {
	if tx == nil {
		return r
	}
	return &requestRepo{tx}
}

func (r *requestRepo) Create(ctx context.Context, req *model.ProductRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *requestRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductRequest, error) {
	var req model.ProductRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.ProductRequest, error) {
	var req model.ProductRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Decide applies the decision only if the request is still pending.
func (r *requestRepo) Decide(ctx context.Context, id uuid.UUID, d RequestDecision) (bool, error) {
	updates := map[string]interface{}{
		"status":        d.Status,
		"decided_by":    d.DecidedBy,
		"owner_comment": d.Comment,
		"decided_at":    d.DecidedAt,
		"updated_at":    d.DecidedAt,
	}
	if d.ProductID != nil {
		updates["product_id"] = *d.ProductID
	}
	if d.StockMovementID != nil {
		updates["stock_movement_id"] = *d.StockMovementID
	}

	res := r.db.WithContext(ctx).Model(&model.ProductRequest{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *requestRepo) List(ctx context.Context, status *model.ApprovalStatus) ([]model.ProductRequest, error) {
	q := r.db.WithContext(ctx).Model(&model.ProductRequest{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var requests []model.ProductRequest
	err := q.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *requestRepo) CountByStatus(ctx context.Context, status model.ApprovalStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProductRequest{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
