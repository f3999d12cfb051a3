package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReversalRequest asks the owner to void a completed sale. At most one pending
// request may exist per transaction.
type ReversalRequest struct {
	BaseModel
	TransactionID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_reversal_requests_pending,where:status = 'pending'" json:"transaction_id"`
	TransactionNumber string          `gorm:"type:varchar(50);not null" json:"transaction_number"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	CashierID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"cashier_id"`
	CashierReason     string          `gorm:"type:text;not null" json:"cashier_reason"`
	Status            ApprovalStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	OwnerComment      string          `gorm:"type:text" json:"owner_comment"`
	ApprovedBy        *uuid.UUID      `gorm:"type:uuid" json:"approved_by,omitempty"`
	DecidedAt         *time.Time      `json:"decided_at,omitempty"`
}
