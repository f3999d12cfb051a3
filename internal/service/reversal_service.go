package service

import (
	"context"
	"strings"

	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/apperror"
	"go-inventory-pos/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReversalService voids completed sales. A sale may be reversed once, and only
// through an owner-approved request raised within the reversal window.
type ReversalService interface {
	RequestReversal(ctx context.Context, actor model.Actor, transactionID uuid.UUID, reason string) (*model.ReversalRequest, error)
	ApproveReversal(ctx context.Context, actor model.Actor, requestID uuid.UUID, comment string) (*model.ReversalRequest, error)
	RejectReversal(ctx context.Context, actor model.Actor, requestID uuid.UUID, comment string) (*model.ReversalRequest, error)
	GetReversal(ctx context.Context, requestID uuid.UUID) (*model.ReversalRequest, error)
	ListReversals(ctx context.Context, status *model.ApprovalStatus) ([]model.ReversalRequest, error)
}

type reversalService struct {
	core
}

func NewReversalService(deps Dependencies) ReversalService {
	return &reversalService{core: newCore(deps)}
}

// RequestReversal opens a pending reversal for an active sale. A sale that does
// not exist is NOT_FOUND rather than INVALID_STATE so callers can tell a bad id
// from a sale that is already reversed.
func (s *reversalService) RequestReversal(ctx context.Context, actor model.Actor, transactionID uuid.UUID, reason string) (*model.ReversalRequest, error) {
	if err := requireRole(actor, "request reversals", model.RoleCashier, model.RoleOwner); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.Validation("a reason is required to request a reversal")
	}

	var created *model.ReversalRequest
	err := s.unitOfWork(ctx, "request reversal", func(tx *gorm.DB) error {
		created = nil
		reversals := s.Reversals.WithTx(tx)

		// 1. The sale must exist and still be active
		txn, err := s.Transactions.WithTx(tx).LockByID(ctx, transactionID)
		if err != nil {
			return notFound(err, "transaction")
		}
		if txn.Status != model.TransactionActive {
			return apperror.InvalidState("transaction is already " + string(txn.Status))
		}

		// 2. Inside the window (the boundary itself is allowed)
		age := s.Now().Sub(txn.Date)
		if age > s.ReversalWindow {
			return apperror.Newf(apperror.KindReversalWindowExpired,
				"transaction %s is older than %s", txn.TransactionNumber, s.ReversalWindow).
				WithDetails(map[string]any{"transaction_date": txn.Date, "window": s.ReversalWindow.String()})
		}

		// 3. One pending request per sale
		pending, err := reversals.HasPending(ctx, txn.ID)
		if err != nil {
			return err
		}
		if pending {
			return apperror.Duplicate("a reversal request is already pending for " + txn.TransactionNumber)
		}

		req := &model.ReversalRequest{
			TransactionID:     txn.ID,
			TransactionNumber: txn.TransactionNumber,
			TotalAmount:       txn.TotalAmount,
			CashierID:         actor.UserID,
			CashierReason:     reason,
			Status:            model.StatusPending,
		}
		if err := reversals.Create(ctx, req); err != nil {
			if database.IsUniqueViolation(err) {
				return apperror.Duplicate("a reversal request is already pending for " + txn.TransactionNumber)
			}
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("reversal requested",
		zap.String("request_id", created.ID.String()),
		zap.String("transaction_number", created.TransactionNumber))
	s.afterCommit(ctx, events.New(events.ReversalRequested, actor, created.TransactionID, created))
	return created, nil
}

func (s *reversalService) ApproveReversal(ctx context.Context, actor model.Actor, requestID uuid.UUID, comment string) (*model.ReversalRequest, error) {
	if err := requireRole(actor, "approve reversals", model.RoleOwner); err != nil {
		return nil, err
	}

	var (
		decided  *model.ReversalRequest
		restored []uuid.UUID
	)
	err := s.unitOfWork(ctx, "approve reversal", func(tx *gorm.DB) error {
		restored = nil
		reversals := s.Reversals.WithTx(tx)
		transactions := s.Transactions.WithTx(tx)
		l := s.ledgerOn(tx)

		// 1. Lock the request, then the sale
		req, err := reversals.LockByID(ctx, requestID)
		if err != nil {
			return notFound(err, "reversal request")
		}
		if req.Status != model.StatusPending {
			return apperror.InvalidState("reversal request is already " + string(req.Status))
		}
		txn, err := transactions.LockByID(ctx, req.TransactionID)
		if err != nil {
			return notFound(err, "transaction")
		}

		// 2. Flip the sale; losing this race means it was already reversed
		ok, err := transactions.MarkReversed(ctx, txn.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.InvalidState("transaction " + txn.TransactionNumber + " is already reversed")
		}

		// 3. Restore every line with an approved in movement
		ids := productIDs(txn.Items)
		if _, err := l.products.LockMany(ctx, ids); err != nil {
			return notFound(err, "product")
		}
		for _, item := range txn.Items {
			approver, txnID := actor.UserID, txn.ID
			movement := &model.StockMovement{
				ProductID:     item.ProductID,
				MovementType:  model.MovementIn,
				Quantity:      item.Quantity,
				Reason:        model.ReasonReversal,
				PerformedBy:   approver,
				ApprovedBy:    &approver,
				Status:        model.StatusApproved,
				TransactionID: &txnID,
			}
			if err := l.movements.Create(ctx, movement); err != nil {
				return err
			}
		}

		// 4. Close the request
		now := s.Now()
		comment = strings.TrimSpace(comment)
		ok, err = reversals.Decide(ctx, req.ID, model.StatusApproved, actor.UserID, comment, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.InvalidState("reversal request is no longer pending")
		}

		approver := actor.UserID
		req.Status = model.StatusApproved
		req.ApprovedBy = &approver
		req.OwnerComment = comment
		req.DecidedAt = &now
		decided = req
		restored = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.Decision("reversal", string(model.StatusApproved))
	s.Logger.Info("reversal approved",
		zap.String("request_id", decided.ID.String()),
		zap.String("transaction_number", decided.TransactionNumber),
		zap.Int("lines_restored", len(restored)))
	s.afterCommit(ctx, events.New(events.ReversalApproved, actor, decided.TransactionID, decided), restored...)
	return decided, nil
}

func (s *reversalService) RejectReversal(ctx context.Context, actor model.Actor, requestID uuid.UUID, comment string) (*model.ReversalRequest, error) {
	if err := requireRole(actor, "reject reversals", model.RoleOwner); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperror.Validation("a comment is required to reject a reversal")
	}

	var decided *model.ReversalRequest
	err := s.unitOfWork(ctx, "reject reversal", func(tx *gorm.DB) error {
		reversals := s.Reversals.WithTx(tx)

		req, err := reversals.LockByID(ctx, requestID)
		if err != nil {
			return notFound(err, "reversal request")
		}
		if req.Status != model.StatusPending {
			return apperror.InvalidState("reversal request is already " + string(req.Status))
		}

		now := s.Now()
		ok, err := reversals.Decide(ctx, req.ID, model.StatusRejected, actor.UserID, comment, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.InvalidState("reversal request is no longer pending")
		}

		approver := actor.UserID
		req.Status = model.StatusRejected
		req.ApprovedBy = &approver
		req.OwnerComment = comment
		req.DecidedAt = &now
		decided = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.Decision("reversal", string(model.StatusRejected))
	s.afterCommit(ctx, events.New(events.ReversalRejected, actor, decided.TransactionID, decided))
	return decided, nil
}

func (s *reversalService) GetReversal(ctx context.Context, requestID uuid.UUID) (*model.ReversalRequest, error) {
	req, err := s.Reversals.FindByID(ctx, requestID)
	if err != nil {
		if err = notFound(err, "reversal request"); apperror.As(err) != nil {
			return nil, err
		}
		return nil, apperror.Internal(err, "load reversal request")
	}
	return req, nil
}

func (s *reversalService) ListReversals(ctx context.Context, status *model.ApprovalStatus) ([]model.ReversalRequest, error) {
	requests, err := s.Reversals.List(ctx, status)
	if err != nil {
		return nil, apperror.Internal(err, "list reversals")
	}
	return requests, nil
}
