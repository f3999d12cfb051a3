package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is created only by an approved add request and is never deleted.
// BaseStock is the opening quantity; current stock is derived from the ledger.
type Product struct {
	BaseModel
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	NameKey   string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	BaseStock int             `gorm:"not null;default:0" json:"base_stock"`
	Category  string          `gorm:"type:varchar(100)" json:"category"`
	ImageRef  *string         `gorm:"type:varchar(512)" json:"image_ref,omitempty"`

	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *uuid.UUID `gorm:"type:uuid" json:"updated_by_user_id,omitempty"`
}

// NormalizeName is the case-insensitive identity of a product name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (p *Product) BeforeSave(tx *gorm.DB) (err error) {
	p.Name = strings.TrimSpace(p.Name)
	p.NameKey = NormalizeName(p.Name)
	return
}

// ProductStock pairs a product with its ledger-derived quantity.
type ProductStock struct {
	Product
	CurrentStock int `json:"current_stock"`
}
