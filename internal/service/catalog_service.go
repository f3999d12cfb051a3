package service

import (
	"context"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/pkg/apperror"

	"github.com/google/uuid"
)

// CatalogService is the read side of the product catalog. Stock figures are
// derived from the ledger on every call.
type CatalogService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductStock, error)
	ListProducts(ctx context.Context) ([]model.ProductStock, error)
}

type catalogService struct {
	core
}

func NewCatalogService(deps Dependencies) CatalogService {
	return &catalogService{core: newCore(deps)}
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductStock, error) {
	product, err := s.Products.FindByID(ctx, id)
	if err != nil {
		if err = notFound(err, "product"); apperror.As(err) != nil {
			return nil, err
		}
		return nil, apperror.Internal(err, "load product")
	}
	stock, err := s.ledgerOn(nil).stockOf(ctx, product)
	if err != nil {
		return nil, apperror.Internal(err, "derive stock")
	}
	return &model.ProductStock{Product: *product, CurrentStock: stock}, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.ProductStock, error) {
	products, err := s.Products.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "list products")
	}
	sums, err := s.Movements.SumApprovedByProduct(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "derive stock")
	}

	result := make([]model.ProductStock, len(products))
	for i, p := range products {
		result[i] = model.ProductStock{Product: p, CurrentStock: p.BaseStock + sums[p.ID]}
	}
	return result, nil
}
