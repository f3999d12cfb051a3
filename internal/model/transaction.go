package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionActive   TransactionStatus = "active"
	TransactionReversed TransactionStatus = "reversed"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentTransfer
}

// Transaction is a completed sale. Only Status ever changes after creation,
// and only from active to reversed.
type Transaction struct {
	BaseModel
	TransactionNumber string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"transaction_number"`
	CashierID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"cashier_id"`
	Subtotal          decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Discount          decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	TotalAmount       decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	PaymentMethod     PaymentMethod     `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status            TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Date              time.Time         `gorm:"not null;index" json:"date"`

	Items []TransactionItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"`
}

// TransactionItem snapshots name and unit price at sale time.
type TransactionItem struct {
	BaseModel
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName   string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}
