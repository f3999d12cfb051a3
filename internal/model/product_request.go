package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RequestType string

const (
	RequestAdd   RequestType = "add"
	RequestPrice RequestType = "price"
	RequestStock RequestType = "stock"
)

var ErrMalformedRequest = errors.New("product request payload does not match its type")

// ProductRequest is a storekeeper proposal awaiting an owner decision. The
// payload columns are nullable and populated per Type; use Payload to read them.
type ProductRequest struct {
	BaseModel
	RequesterID uuid.UUID   `gorm:"type:uuid;not null;index" json:"requester_id"`
	Type        RequestType `gorm:"type:varchar(10);not null" json:"type"`

	ProductName       *string             `gorm:"type:varchar(255)" json:"product_name,omitempty"`
	ProductID         *uuid.UUID          `gorm:"type:uuid;index" json:"product_id,omitempty"`
	RequestedPrice    decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"requested_price"`
	RequestedQuantity *int                `json:"requested_quantity,omitempty"`
	Category          *string             `gorm:"type:varchar(100)" json:"category,omitempty"`

	Reason       string         `gorm:"type:text" json:"reason"`
	Status       ApprovalStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	OwnerComment string         `gorm:"type:text" json:"owner_comment"`
	DecidedBy    *uuid.UUID     `gorm:"type:uuid" json:"decided_by,omitempty"`
	DecidedAt    *time.Time     `json:"decided_at,omitempty"`

	// Set on approval of a stock request.
	StockMovementID *uuid.UUID `gorm:"type:uuid" json:"stock_movement_id,omitempty"`
}

// RequestPayload is the type-specific half of a product request. The set of
// implementations is closed: AddProduct, PriceChange and StockChange.
type RequestPayload interface {
	RequestType() RequestType
	fill(r *ProductRequest)
}

type AddProduct struct {
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	InitialQuantity int             `json:"initial_quantity"`
	Category        string          `json:"category"`
}

type PriceChange struct {
	ProductID uuid.UUID       `json:"product_id"`
	NewPrice  decimal.Decimal `json:"new_price"`
}

// StockChange carries a signed delta; negative removes stock.
type StockChange struct {
	ProductID uuid.UUID `json:"product_id"`
	Delta     int       `json:"delta"`
}

func (AddProduct) RequestType() RequestType  { return RequestAdd }
func (PriceChange) RequestType() RequestType { return RequestPrice }
func (StockChange) RequestType() RequestType { return RequestStock }

func (p AddProduct) fill(r *ProductRequest) {
	name, category, qty := p.Name, p.Category, p.InitialQuantity
	r.ProductName = &name
	r.Category = &category
	r.RequestedQuantity = &qty
	r.RequestedPrice = decimal.NewNullDecimal(p.Price)
}

func (p PriceChange) fill(r *ProductRequest) {
	id := p.ProductID
	r.ProductID = &id
	r.RequestedPrice = decimal.NewNullDecimal(p.NewPrice)
}

func (p StockChange) fill(r *ProductRequest) {
	id, delta := p.ProductID, p.Delta
	r.ProductID = &id
	r.RequestedQuantity = &delta
}

// NewProductRequest builds a pending request row from a payload.
func NewProductRequest(requesterID uuid.UUID, payload RequestPayload, reason string) *ProductRequest {
	r := &ProductRequest{
		RequesterID: requesterID,
		Type:        payload.RequestType(),
		Reason:      reason,
		Status:      StatusPending,
	}
	payload.fill(r)
	return r
}

// Payload rebuilds the typed payload from the row's columns.
func (r *ProductRequest) Payload() (RequestPayload, error) {
	switch r.Type {
	case RequestAdd:
		if r.ProductName == nil || !r.RequestedPrice.Valid {
			return nil, ErrMalformedRequest
		}
		p := AddProduct{Name: *r.ProductName, Price: r.RequestedPrice.Decimal}
		if r.RequestedQuantity != nil {
			p.InitialQuantity = *r.RequestedQuantity
		}
		if r.Category != nil {
			p.Category = *r.Category
		}
		return p, nil
	case RequestPrice:
		if r.ProductID == nil || !r.RequestedPrice.Valid {
			return nil, ErrMalformedRequest
		}
		return PriceChange{ProductID: *r.ProductID, NewPrice: r.RequestedPrice.Decimal}, nil
	case RequestStock:
		if r.ProductID == nil || r.RequestedQuantity == nil {
			return nil, ErrMalformedRequest
		}
		return StockChange{ProductID: *r.ProductID, Delta: *r.RequestedQuantity}, nil
	}
	return nil, ErrMalformedRequest
}
