package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the committed header of a sale. Code is assigned exactly once at
// creation and never changes; Total always equals the sum of the line
// subtotals stored with it.
type Sale struct {
	ID         uint     `gorm:"primaryKey"`
	Code       string   `gorm:"size:50;uniqueIndex;not null"`
	CustomerID uint     `gorm:"index;not null"`
	Customer   Customer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	OccurredAt time.Time
	Total      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time
	Lines      []SaleLine `gorm:"constraint:OnDelete:CASCADE"`
}

// SaleLine snapshots the product price at commit time. UnitPriceAtSale and
// Subtotal are never re-derived from the product after the sale is committed.
type SaleLine struct {
	ID              uint            `gorm:"primaryKey"`
	SaleID          uint            `gorm:"index;not null"`
	ProductID       uint            `gorm:"index;not null"`
	Product         Product         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Quantity        int             `gorm:"not null"`
	UnitPriceAtSale decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}
