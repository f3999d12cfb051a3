package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/metrics"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/pkg/apperror"
	"go-inventory-pos/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockCache is the display-only stock cache. Implementations may be stale;
// no write path consults it.
type StockCache interface {
	Get(ctx context.Context, productID uuid.UUID) (int, bool, error)
	Set(ctx context.Context, productID uuid.UUID, stock int) error
	Invalidate(ctx context.Context, productIDs ...uuid.UUID) error
}

// Dependencies is shared by every service. Cache, Publisher and Metrics are
// optional.
type Dependencies struct {
	DB           *gorm.DB
	Products     repository.ProductRepository
	Movements    repository.MovementRepository
	Requests     repository.RequestRepository
	Transactions repository.TransactionRepository
	Reversals    repository.ReversalRepository

	Cache     StockCache
	Publisher events.Publisher
	Metrics   *metrics.Collectors
	Logger    *zap.Logger

	Now               func() time.Time
	MaxRetries        int
	ReversalWindow    time.Duration
	TransactionPrefix string
}

// NewDependencies wires the repositories over db with default settings.
func NewDependencies(db *gorm.DB) Dependencies {
	return Dependencies{
		DB:           db,
		Products:     repository.NewProductRepo(db),
		Movements:    repository.NewMovementRepo(db),
		Requests:     repository.NewRequestRepo(db),
		Transactions: repository.NewTransactionRepo(db),
		Reversals:    repository.NewReversalRepo(db),
	}
}

const (
	defaultReversalWindow    = 48 * time.Hour
	defaultTransactionPrefix = "TRX"
	defaultMaxRetries        = 3
)

type core struct {
	Dependencies
}

func newCore(d Dependencies) core {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MaxRetries <= 0 {
		d.MaxRetries = defaultMaxRetries
	}
	if d.ReversalWindow <= 0 {
		d.ReversalWindow = defaultReversalWindow
	}
	if d.TransactionPrefix == "" {
		d.TransactionPrefix = defaultTransactionPrefix
	}
	return core{Dependencies: d}
}

// unitOfWork runs fn as one retried transaction. Errors that are not already
// classified surface as INTERNAL.
func (c *core) unitOfWork(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	err := database.WithRetry(ctx, c.DB, c.MaxRetries, fn)
	if err == nil {
		return nil
	}
	if apperror.As(err) != nil {
		return err
	}
	c.Logger.Error("unit of work failed", zap.String("op", op), zap.Error(err))
	return apperror.Internal(err, op+" failed")
}

// afterCommit drops cached stock for the touched products and publishes evt.
// Neither step can fail the already committed operation.
func (c *core) afterCommit(ctx context.Context, evt events.Event, productIDs ...uuid.UUID) {
	if c.Cache != nil && len(productIDs) > 0 {
		if err := c.Cache.Invalidate(ctx, productIDs...); err != nil {
			c.Logger.Warn("stock cache invalidation failed", zap.Error(err))
		}
	}
	if err := c.Publisher.Publish(ctx, evt); err != nil {
		c.Logger.Warn("event publish failed",
			zap.String("type", string(evt.Type)),
			zap.String("event_id", evt.ID),
			zap.Error(err))
	}
}

// notFound translates a repository miss into NOT_FOUND and leaves other
// errors untouched.
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(resource)
	}
	return err
}

func requireRole(actor model.Actor, action string, roles ...model.Role) error {
	if actor.UserID == uuid.Nil {
		return apperror.Forbidden("unauthenticated actor")
	}
	if !actor.Is(roles...) {
		return apperror.Forbidden(fmt.Sprintf("role %q may not %s", actor.Role, action))
	}
	return nil
}

// ledger derives and guards stock. Every method must run on repositories
// bound to the caller's transaction, with the product row already locked when
// the result gates a write.
type ledger struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
	metrics   *metrics.Collectors
}

func (c *core) ledgerOn(tx *gorm.DB) ledger {
	return ledger{
		products:  c.Products.WithTx(tx),
		movements: c.Movements.WithTx(tx),
		metrics:   c.Metrics,
	}
}

func (l ledger) stockOf(ctx context.Context, product *model.Product) (int, error) {
	start := time.Now()
	sum, err := l.movements.SumApproved(ctx, product.ID)
	l.metrics.ObserveStockRecompute(time.Since(start))
	if err != nil {
		return 0, err
	}
	return product.BaseStock + sum, nil
}

// ensureCanApply fails with INSUFFICIENT_STOCK when applying delta would take
// the product below zero.
func (l ledger) ensureCanApply(ctx context.Context, product *model.Product, delta int) (int, error) {
	stock, err := l.stockOf(ctx, product)
	if err != nil {
		return 0, err
	}
	if stock+delta < 0 {
		l.metrics.InsufficientStock()
		return stock, apperror.Newf(apperror.KindInsufficientStock,
			"insufficient stock for %s: available %d, requested %d", product.Name, stock, -delta).
			WithDetails(map[string]any{
				"product_id":   product.ID,
				"product_name": product.Name,
				"available":    stock,
				"requested":    -delta,
			})
	}
	return stock, nil
}
