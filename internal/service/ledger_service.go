package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/pkg/apperror"
	"go-inventory-pos/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerService owns the append-only movement log. Current stock is always
// base_stock plus the signed sum of approved movements.
type LedgerService interface {
	CurrentStock(ctx context.Context, productID uuid.UUID) (int, error)
	CachedStock(ctx context.Context, productID uuid.UUID) (int, error)
	AppendMovement(ctx context.Context, actor model.Actor, in AppendMovementInput) (*model.StockMovement, error)
	ApproveMovement(ctx context.Context, actor model.Actor, movementID uuid.UUID) (*model.StockMovement, error)
	RejectMovement(ctx context.Context, actor model.Actor, movementID uuid.UUID) (*model.StockMovement, error)
	ListMovements(ctx context.Context, filter repository.MovementFilter) ([]model.StockMovement, error)
}

type AppendMovementInput struct {
	ProductID    uuid.UUID                 `json:"product_id" validate:"uuid_required"`
	MovementType model.MovementType        `json:"movement_type" validate:"required,oneof=in out adjustment"`
	Direction    model.AdjustmentDirection `json:"direction" validate:"omitempty,oneof=increase decrease"`
	Quantity     int                       `json:"quantity" validate:"gt=0"`
	Reason       string                    `json:"reason" validate:"max=500"`
}

type ledgerService struct {
	core
}

func NewLedgerService(deps Dependencies) LedgerService {
	return &ledgerService{core: newCore(deps)}
}

func (s *ledgerService) CurrentStock(ctx context.Context, productID uuid.UUID) (int, error) {
	product, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		return 0, notFound(err, "product")
	}
	stock, err := s.ledgerOn(nil).stockOf(ctx, product)
	if err != nil {
		return 0, apperror.Internal(err, "derive stock")
	}
	return stock, nil
}

// CachedStock serves dashboards. It may lag a committed change by the cache
// TTL at most, and falls back to the ledger on any cache problem.
func (s *ledgerService) CachedStock(ctx context.Context, productID uuid.UUID) (int, error) {
	if s.Cache == nil {
		return s.CurrentStock(ctx, productID)
	}
	if stock, found, err := s.Cache.Get(ctx, productID); err == nil && found {
		return stock, nil
	} else if err != nil {
		s.Logger.Warn("stock cache read failed", zap.String("product_id", productID.String()), zap.Error(err))
	}

	stock, err := s.CurrentStock(ctx, productID)
	if err != nil {
		return 0, err
	}
	if err := s.Cache.Set(ctx, productID, stock); err != nil {
		s.Logger.Warn("stock cache write failed", zap.String("product_id", productID.String()), zap.Error(err))
	}
	return stock, nil
}

func (s *ledgerService) AppendMovement(ctx context.Context, actor model.Actor, in AppendMovementInput) (*model.StockMovement, error) {
	if err := requireRole(actor, "record stock movements", model.RoleStorekeeper, model.RoleOwner); err != nil {
		return nil, err
	}

	// 1. Validate shape
	if err := validator.Check(in); err != nil {
		return nil, err
	}
	if in.MovementType == model.MovementAdjustment && !in.Direction.IsValid() {
		return nil, apperror.Validation("adjustment requires a direction of increase or decrease")
	}
	if in.MovementType != model.MovementAdjustment && in.Direction != "" {
		return nil, apperror.Validation("direction applies to adjustments only")
	}

	// 2. The product must exist
	if _, err := s.Products.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validation("unknown product")
		}
		return nil, apperror.Internal(err, "load product")
	}

	// 3. Record as pending; it has no effect on stock until approved
	movement := &model.StockMovement{
		ProductID:    in.ProductID,
		MovementType: in.MovementType,
		Direction:    in.Direction,
		Quantity:     in.Quantity,
		Reason:       strings.TrimSpace(in.Reason),
		PerformedBy:  actor.UserID,
		Status:       model.StatusPending,
	}
	if err := s.Movements.Create(ctx, movement); err != nil {
		return nil, apperror.Internal(err, "record movement")
	}

	s.Logger.Info("movement submitted",
		zap.String("movement_id", movement.ID.String()),
		zap.String("type", string(movement.MovementType)),
		zap.Int("quantity", movement.Quantity))
	s.afterCommit(ctx, events.New(events.MovementSubmitted, actor, movement.ProductID, movement))
	return movement, nil
}

func (s *ledgerService) ApproveMovement(ctx context.Context, actor model.Actor, movementID uuid.UUID) (*model.StockMovement, error) {
	return s.decide(ctx, actor, movementID, model.StatusApproved)
}

func (s *ledgerService) RejectMovement(ctx context.Context, actor model.Actor, movementID uuid.UUID) (*model.StockMovement, error) {
	return s.decide(ctx, actor, movementID, model.StatusRejected)
}

func (s *ledgerService) decide(ctx context.Context, actor model.Actor, movementID uuid.UUID, to model.ApprovalStatus) (*model.StockMovement, error) {
	if err := requireRole(actor, "decide stock movements", model.RoleOwner); err != nil {
		return nil, err
	}

	var decided *model.StockMovement
	err := s.unitOfWork(ctx, "decide movement", func(tx *gorm.DB) error {
		movements := s.Movements.WithTx(tx)

		// 1. Lock the movement and check it is still open
		movement, err := movements.LockByID(ctx, movementID)
		if err != nil {
			return notFound(err, "movement")
		}
		if movement.Status != model.StatusPending {
			return apperror.InvalidState("movement is already " + string(movement.Status))
		}

		// 2. A removal may only be approved if stock covers it
		if to == model.StatusApproved && movement.Delta() < 0 {
			l := s.ledgerOn(tx)
			product, err := l.products.LockByID(ctx, movement.ProductID)
			if err != nil {
				return notFound(err, "product")
			}
			if _, err := l.ensureCanApply(ctx, product, movement.Delta()); err != nil {
				return err
			}
		}

		// 3. Transition pending -> terminal
		ok, err := movements.Decide(ctx, movement.ID, to, actor.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.InvalidState("movement is no longer pending")
		}

		approver := actor.UserID
		movement.Status = to
		movement.ApprovedBy = &approver
		decided = movement
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.Decision("movement", string(to))
	evtType := events.MovementApproved
	if to == model.StatusRejected {
		evtType = events.MovementRejected
	}
	s.afterCommit(ctx, events.New(evtType, actor, decided.ProductID, decided), decided.ProductID)
	return decided, nil
}

func (s *ledgerService) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]model.StockMovement, error) {
	movements, err := s.Movements.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err, "list movements")
	}
	return movements, nil
}
