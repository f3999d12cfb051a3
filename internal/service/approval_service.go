package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/pkg/apperror"
	"go-inventory-pos/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApprovalService runs storekeeper proposals (new product, price change,
// stock change) through an owner decision.
type ApprovalService interface {
	Submit(ctx context.Context, actor model.Actor, payload model.RequestPayload, reason string) (*model.ProductRequest, error)
	Approve(ctx context.Context, actor model.Actor, requestID uuid.UUID, comment string) (*model.ProductRequest, error)
	Reject(ctx context.Context, actor model.Actor, requestID uuid.UUID, comment string) (*model.ProductRequest, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (*model.ProductRequest, error)
	ListRequests(ctx context.Context, status *model.ApprovalStatus) ([]model.ProductRequest, error)
}

type approvalService struct {
	core
}

func NewApprovalService(deps Dependencies) ApprovalService {
	return &approvalService{core: newCore(deps)}
}

func (s *approvalService) Submit(ctx context.Context, actor model.Actor, payload model.RequestPayload, reason string) (*model.ProductRequest, error) {
	if err := requireRole(actor, "submit product requests", model.RoleStorekeeper, model.RoleOwner); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, apperror.Validation("request payload is required")
	}

	// 1. Validate the payload against current catalog state
	switch p := payload.(type) {
	case model.AddProduct:
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, apperror.Validation("product name is required")
		}
		if p.Price.IsNegative() {
			return nil, apperror.Validation("price must not be negative")
		}
		if p.InitialQuantity < 0 {
			return nil, apperror.Validation("initial quantity must not be negative")
		}
		if err := s.ensureNameFree(ctx, s.Products, p.Name); err != nil {
			return nil, err
		}
		payload = p
	case model.PriceChange:
		if p.NewPrice.IsNegative() {
			return nil, apperror.Validation("price must not be negative")
		}
		if err := s.ensureProductKnown(ctx, p.ProductID); err != nil {
			return nil, err
		}
	case model.StockChange:
		if p.Delta == 0 {
			return nil, apperror.Validation("stock delta must not be zero")
		}
		if err := s.ensureProductKnown(ctx, p.ProductID); err != nil {
			return nil, err
		}
	default:
		return nil, apperror.Validation("unsupported request type")
	}

	// 2. Persist as pending
	req := model.NewProductRequest(actor.UserID, payload, strings.TrimSpace(reason))
	if err := s.Requests.Create(ctx, req); err != nil {
		return nil, apperror.Internal(err, "save request")
	}

	s.Logger.Info("product request submitted",
		zap.String("request_id", req.ID.String()),
		zap.String("type", string(req.Type)))
	s.afterCommit(ctx, events.New(events.RequestSubmitted, actor, req.ID, req))
	return req, nil
}

func (s *approvalService) ensureNameFree(ctx context.Context, products repository.ProductRepository, name string) error {
	_, err := products.FindByName(ctx, name)
	switch {
	case err == nil:
		return apperror.Duplicate("a product named " + name + " already exists")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return apperror.Internal(err, "check product name")
	}
}

func (s *approvalService) ensureProductKnown(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return apperror.Validation("product_id is required")
	}
	if _, err := s.Products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Validation("unknown product")
		}
		return apperror.Internal(err, "load product")
	}
	return nil
}

func (s *approvalService) Approve(ctx context.Context, actor model.Actor, requestID uuid.UUID, comment string) (*model.ProductRequest, error) {
	if err := requireRole(actor, "approve product requests", model.RoleOwner); err != nil {
		return nil, err
	}

	var (
		decided  *model.ProductRequest
		affected []uuid.UUID
	)
	err := s.unitOfWork(ctx, "approve request", func(tx *gorm.DB) error {
		affected = nil
		requests := s.Requests.WithTx(tx)
		l := s.ledgerOn(tx)

		// 1. Lock the request and check it is still open
		req, err := requests.LockByID(ctx, requestID)
		if err != nil {
			return notFound(err, "request")
		}
		if req.Status != model.StatusPending {
			return apperror.InvalidState("request is already " + string(req.Status))
		}
		payload, err := req.Payload()
		if err != nil {
			return apperror.Internal(err, "read request payload")
		}

		now := s.Now()
		decision := repository.RequestDecision{
			Status:    model.StatusApproved,
			DecidedBy: actor.UserID,
			Comment:   strings.TrimSpace(comment),
			DecidedAt: now,
		}

		// 2. Apply exactly one effect
		switch p := payload.(type) {
		case model.AddProduct:
			if err := s.ensureNameFree(ctx, l.products, p.Name); err != nil {
				return err
			}
			approver := actor.UserID
			product := &model.Product{
				Name:            p.Name,
				Price:           p.Price,
				BaseStock:       p.InitialQuantity,
				Category:        p.Category,
				CreatedByUserID: &approver,
				UpdatedByUserID: &approver,
			}
			if err := l.products.Create(ctx, product); err != nil {
				if database.IsUniqueViolation(err) {
					return apperror.Duplicate("a product named " + p.Name + " already exists")
				}
				return err
			}
			decision.ProductID = &product.ID
			affected = append(affected, product.ID)

		case model.PriceChange:
			if _, err := l.products.LockByID(ctx, p.ProductID); err != nil {
				return notFound(err, "product")
			}
			if err := l.products.UpdatePrice(ctx, p.ProductID, p.NewPrice, actor.UserID); err != nil {
				return notFound(err, "product")
			}
			affected = append(affected, p.ProductID)

		case model.StockChange:
			product, err := l.products.LockByID(ctx, p.ProductID)
			if err != nil {
				return notFound(err, "product")
			}
			if _, err := l.ensureCanApply(ctx, product, p.Delta); err != nil {
				return err
			}
			movement := stockChangeMovement(req, p, actor.UserID)
			if err := l.movements.Create(ctx, movement); err != nil {
				return err
			}
			decision.StockMovementID = &movement.ID
			affected = append(affected, p.ProductID)
		}

		// 3. Close the request
		ok, err := requests.Decide(ctx, req.ID, decision)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.InvalidState("request is no longer pending")
		}

		applyDecision(req, decision)
		decided = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.Decision("request", string(model.StatusApproved))
	s.Logger.Info("product request approved",
		zap.String("request_id", decided.ID.String()),
		zap.String("type", string(decided.Type)))
	s.afterCommit(ctx, events.New(events.RequestApproved, actor, decided.ID, decided), affected...)
	return decided, nil
}

// stockChangeMovement is the approved ledger entry an approved stock request
// produces. The storekeeper who asked is recorded as the performer.
func stockChangeMovement(req *model.ProductRequest, p model.StockChange, approverID uuid.UUID) *model.StockMovement {
	movementType, qty := model.MovementIn, p.Delta
	if p.Delta < 0 {
		movementType, qty = model.MovementOut, -p.Delta
	}
	reason := req.Reason
	if reason == "" {
		reason = "stock request"
	}
	requestID := req.ID
	return &model.StockMovement{
		ProductID:    p.ProductID,
		MovementType: movementType,
		Quantity:     qty,
		Reason:       reason,
		PerformedBy:  req.RequesterID,
		ApprovedBy:   &approverID,
		Status:       model.StatusApproved,
		RequestID:    &requestID,
	}
}

func (s *approvalService) Reject(ctx context.Context, actor model.Actor, requestID uuid.UUID, comment string) (*model.ProductRequest, error) {
	if err := requireRole(actor, "reject product requests", model.RoleOwner); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperror.Validation("a comment is required to reject a request")
	}

	var decided *model.ProductRequest
	err := s.unitOfWork(ctx, "reject request", func(tx *gorm.DB) error {
		requests := s.Requests.WithTx(tx)

		req, err := requests.LockByID(ctx, requestID)
		if err != nil {
			return notFound(err, "request")
		}
		if req.Status != model.StatusPending {
			return apperror.InvalidState("request is already " + string(req.Status))
		}

		decision := repository.RequestDecision{
			Status:    model.StatusRejected,
			DecidedBy: actor.UserID,
			Comment:   comment,
			DecidedAt: s.Now(),
		}
		ok, err := requests.Decide(ctx, req.ID, decision)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.InvalidState("request is no longer pending")
		}

		applyDecision(req, decision)
		decided = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.Decision("request", string(model.StatusRejected))
	s.afterCommit(ctx, events.New(events.RequestRejected, actor, decided.ID, decided))
	return decided, nil
}

func applyDecision(req *model.ProductRequest, d repository.RequestDecision) {
	decidedBy, decidedAt := d.DecidedBy, d.DecidedAt
	req.Status = d.Status
	req.DecidedBy = &decidedBy
	req.DecidedAt = &decidedAt
	req.OwnerComment = d.Comment
	if d.ProductID != nil {
		req.ProductID = d.ProductID
	}
	if d.StockMovementID != nil {
		req.StockMovementID = d.StockMovementID
	}
}

func (s *approvalService) GetRequest(ctx context.Context, requestID uuid.UUID) (*model.ProductRequest, error) {
	req, err := s.Requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("request")
		}
		return nil, apperror.Internal(err, "load request")
	}
	return req, nil
}

func (s *approvalService) ListRequests(ctx context.Context, status *model.ApprovalStatus) ([]model.ProductRequest, error) {
	requests, err := s.Requests.List(ctx, status)
	if err != nil {
		return nil, apperror.Internal(err, "list requests")
	}
	return requests, nil
}
