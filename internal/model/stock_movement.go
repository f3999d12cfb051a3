package model

import (
	"github.com/google/uuid"
)

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

func (t MovementType) IsValid() bool {
	return t == MovementIn || t == MovementOut || t == MovementAdjustment
}

// AdjustmentDirection gives an adjustment its sign; quantity stays positive.
type AdjustmentDirection string

const (
	DirectionIncrease AdjustmentDirection = "increase"
	DirectionDecrease AdjustmentDirection = "decrease"
)

func (d AdjustmentDirection) IsValid() bool {
	return d == DirectionIncrease || d == DirectionDecrease
}

// Reasons written on movements the system creates itself.
const (
	ReasonSale     = "sale"
	ReasonReversal = "reversal"
)

// StockMovement is one append-only ledger entry. Once approved or rejected only
// status, approver and timestamps have ever been written.
type StockMovement struct {
	BaseModel
	ProductID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"product_id"`
	MovementType MovementType        `gorm:"type:varchar(20);not null" json:"movement_type"`
	Direction    AdjustmentDirection `gorm:"type:varchar(10)" json:"direction,omitempty"`
	Quantity     int                 `gorm:"not null" json:"quantity"`
	Reason       string              `gorm:"type:text" json:"reason"`
	PerformedBy  uuid.UUID           `gorm:"type:uuid;not null" json:"performed_by"`
	ApprovedBy   *uuid.UUID          `gorm:"type:uuid" json:"approved_by"`
	Status       ApprovalStatus      `gorm:"type:varchar(20);not null;index" json:"status"`

	// Causal links: the sale it deducts for or compensates, and the stock
	// request it was produced by.
	TransactionID *uuid.UUID `gorm:"type:uuid;index" json:"transaction_id,omitempty"`
	RequestID     *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"request_id,omitempty"`
}

// Delta is the signed effect of this movement on stock when approved.
func (m *StockMovement) Delta() int {
	switch m.MovementType {
	case MovementIn:
		return m.Quantity
	case MovementOut:
		return -m.Quantity
	case MovementAdjustment:
		if m.Direction == DirectionDecrease {
			return -m.Quantity
		}
		return m.Quantity
	}
	return 0
}

// SignedQuantitySQL mirrors Delta for ledger aggregation in SQL.
const SignedQuantitySQL = `COALESCE(SUM(CASE
	WHEN movement_type = 'in' THEN quantity
	WHEN movement_type = 'out' THEN -quantity
	WHEN movement_type = 'adjustment' AND direction = 'decrease' THEN -quantity
	WHEN movement_type = 'adjustment' THEN quantity
	ELSE 0 END), 0)`
