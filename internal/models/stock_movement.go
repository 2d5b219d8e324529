package models

import "time"

type MovementKind string

const (
	MovementInbound  MovementKind = "inbound"
	MovementOutbound MovementKind = "outbound"
)

// ActorSystem is recorded on movements that were not triggered by an
// authenticated user. Every movement has an attributable actor; the field is
// never left empty.
const ActorSystem = "System"

// StockMovement is the append-only audit trail of stock changes. Rows are
// only ever inserted; there is no update or delete path.
type StockMovement struct {
	ID         uint         `gorm:"primaryKey"`
	ProductID  uint         `gorm:"index;not null"`
	Product    Product      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Kind       MovementKind `gorm:"size:20;not null"`
	Quantity   int          `gorm:"not null"` // positive magnitude, direction is Kind
	Reason     string       `gorm:"size:255"`
	OccurredAt time.Time    `gorm:"index;not null"`
	Actor      string       `gorm:"size:100;not null"`
	CreatedAt  time.Time
}
