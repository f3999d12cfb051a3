package service

import (
	"context"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/apperror"
)

const lowStockThreshold = 10

// DashboardStats is the owner's at-a-glance view: catalog size, products
// running low, and what is waiting on a decision.
type DashboardStats struct {
	TotalProducts    int   `json:"total_products"`
	LowStockCount    int   `json:"low_stock_count"`
	PendingMovements int64 `json:"pending_movements"`
	PendingRequests  int64 `json:"pending_requests"`
	PendingReversals int64 `json:"pending_reversals"`
}

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type dashboardService struct {
	core
	catalog CatalogService
}

func NewDashboardService(deps Dependencies, catalog CatalogService) DashboardService {
	return &dashboardService{core: newCore(deps), catalog: catalog}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalProducts = len(products)
	for _, p := range products {
		if p.CurrentStock < lowStockThreshold {
			stats.LowStockCount++
		}
	}

	if stats.PendingMovements, err = s.Movements.CountByStatus(ctx, model.StatusPending); err != nil {
		return nil, apperror.Internal(err, "count pending movements")
	}
	if stats.PendingRequests, err = s.Requests.CountByStatus(ctx, model.StatusPending); err != nil {
		return nil, apperror.Internal(err, "count pending requests")
	}
	if stats.PendingReversals, err = s.Reversals.CountByStatus(ctx, model.StatusPending); err != nil {
		return nil, apperror.Internal(err, "count pending reversals")
	}
	return &stats, nil
}
