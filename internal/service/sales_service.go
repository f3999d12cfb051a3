package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/pkg/apperror"
	"go-inventory-pos/pkg/database"
	"go-inventory-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SalesService turns a cart into a completed sale and its stock deductions.
type SalesService interface {
	Checkout(ctx context.Context, actor model.Actor, in CheckoutInput) (*model.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, error)
}

type CartItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

type CheckoutInput struct {
	Items         []CartItem          `json:"items" validate:"required,min=1,dive"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,oneof=cash card transfer"`
	Discount      decimal.Decimal     `json:"discount"`
}

type salesService struct {
	core
}

func NewSalesService(deps Dependencies) SalesService {
	return &salesService{core: newCore(deps)}
}

// NewTransactionNumber renders PREFIX-YYYYMMDD-HHMMSS-xxxxxx. The random
// suffix keeps numbers unique across concurrent checkouts in one second; a
// collision is caught by the unique index and retried.
func NewTransactionNumber(prefix string, at time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102-150405"), strings.ToUpper(hex.EncodeToString(id[:3])))
}

// maxLineQuantity is the largest quantity a stored line or movement can hold.
const maxLineQuantity = math.MaxInt32

// mergeLines folds repeated products into one line, keeping first-seen order,
// so the stock check sees the full quantity requested per product.
func mergeLines(items []CartItem) ([]CartItem, error) {
	index := make(map[uuid.UUID]int, len(items))
	merged := make([]CartItem, 0, len(items))
	for _, item := range items {
		if item.Quantity > maxLineQuantity {
			return nil, apperror.Validation(fmt.Sprintf("quantity must not exceed %d", maxLineQuantity))
		}
		if i, ok := index[item.ProductID]; ok {
			if merged[i].Quantity > maxLineQuantity-item.Quantity {
				return nil, apperror.Validation(fmt.Sprintf("total quantity for a product must not exceed %d", maxLineQuantity))
			}
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func (s *salesService) Checkout(ctx context.Context, actor model.Actor, in CheckoutInput) (*model.Transaction, error) {
	if err := requireRole(actor, "check out sales", model.RoleCashier, model.RoleOwner); err != nil {
		return nil, err
	}

	// 1. Validate the cart
	if err := validator.Check(in); err != nil {
		s.Metrics.Checkout("invalid")
		return nil, err
	}
	if in.Discount.IsNegative() {
		s.Metrics.Checkout("invalid")
		return nil, apperror.Validation("discount must not be negative")
	}
	lines, err := mergeLines(in.Items)
	if err != nil {
		s.Metrics.Checkout("invalid")
		return nil, err
	}

	var sale *model.Transaction
	err = s.unitOfWork(ctx, "checkout", func(tx *gorm.DB) error {
		sale = nil
		l := s.ledgerOn(tx)
		transactions := s.Transactions.WithTx(tx)

		// 2. Lock every product in the cart, in id order
		ids := make([]uuid.UUID, len(lines))
		for i, line := range lines {
			ids[i] = line.ProductID
		}
		locked, err := l.products.LockMany(ctx, ids)
		if err != nil {
			return notFound(err, "product")
		}
		products := make(map[uuid.UUID]*model.Product, len(locked))
		for i := range locked {
			products[locked[i].ID] = &locked[i]
		}

		// 3. Check stock and price each line at the locked price
		subtotal := decimal.Zero
		items := make([]model.TransactionItem, 0, len(lines))
		for _, line := range lines {
			product := products[line.ProductID]
			if _, err := l.ensureCanApply(ctx, product, -line.Quantity); err != nil {
				return err
			}
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			items = append(items, model.TransactionItem{
				BaseModel:   model.BaseModel{ID: uuid.New()},
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
				LineTotal:   lineTotal,
			})
		}
		total := subtotal.Sub(in.Discount)
		if total.IsNegative() {
			return apperror.Validation("discount exceeds the sale subtotal")
		}

		// 4. Record the sale
		now := s.Now()
		txn := &model.Transaction{
			TransactionNumber: NewTransactionNumber(s.TransactionPrefix, now),
			CashierID:         actor.UserID,
			Subtotal:          subtotal,
			Discount:          in.Discount,
			TotalAmount:       total,
			PaymentMethod:     in.PaymentMethod,
			Status:            model.TransactionActive,
			Date:              now,
			Items:             items,
		}
		if err := transactions.Create(ctx, txn); err != nil {
			if database.IsUniqueViolation(err) {
				return database.MarkRetryable(err)
			}
			return err
		}

		// 5. Deduct stock with approved out movements linked to the sale
		for _, item := range txn.Items {
			cashier, txnID := actor.UserID, txn.ID
			movement := &model.StockMovement{
				ProductID:     item.ProductID,
				MovementType:  model.MovementOut,
				Quantity:      item.Quantity,
				Reason:        model.ReasonSale + " " + txn.TransactionNumber,
				PerformedBy:   cashier,
				ApprovedBy:    &cashier,
				Status:        model.StatusApproved,
				TransactionID: &txnID,
			}
			if err := l.movements.Create(ctx, movement); err != nil {
				return err
			}
		}

		sale = txn
		return nil
	})
	if err != nil {
		result := "error"
		switch apperror.KindOf(err) {
		case apperror.KindInsufficientStock:
			result = "insufficient_stock"
		case apperror.KindValidation, apperror.KindNotFound:
			result = "invalid"
		}
		s.Metrics.Checkout(result)
		return nil, err
	}

	s.Metrics.Checkout("success")
	s.Logger.Info("sale completed",
		zap.String("transaction_number", sale.TransactionNumber),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(sale.Items)))
	s.afterCommit(ctx, events.New(events.SaleCompleted, actor, sale.ID, sale), productIDs(sale.Items)...)
	return sale, nil
}

func productIDs(items []model.TransactionItem) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	return ids
}

func (s *salesService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	txn, err := s.Transactions.FindByID(ctx, id)
	if err != nil {
		if err = notFound(err, "transaction"); apperror.As(err) != nil {
			return nil, err
		}
		return nil, apperror.Internal(err, "load transaction")
	}
	return txn, nil
}

func (s *salesService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, error) {
	transactions, err := s.Transactions.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err, "list transactions")
	}
	return transactions, nil
}
