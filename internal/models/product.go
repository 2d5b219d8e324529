package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uint            `gorm:"primaryKey"`
	SKU          string          `gorm:"size:50;uniqueIndex;not null"`
	Name         string          `gorm:"size:100;not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock        int             `gorm:"not null;default:0;check:stock >= 0"`
	ReorderLevel int             `gorm:"not null;default:0"` // stock at or below this means the product needs restocking
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Product) NeedsRestock() bool {
	return p.Stock <= p.ReorderLevel
}
