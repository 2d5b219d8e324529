// Package stock owns the on-hand quantity invariant (stock >= 0) and the
// append-only movement trail. Stock is only ever changed through relative,
// audited deltas; there is deliberately no "set absolute stock" operation.
package stock

import (
	"errors"
	"fmt"
	"time"

	"inventario-backend/internal/models"

	"gorm.io/gorm"
)

// InsufficientStockError reports a decrement that would take a product's
// stock below zero.
type InsufficientStockError struct {
	ProductID uint
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.SKU, e.Requested, e.Available)
}

var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// Decrement atomically subtracts qty from the product's stock inside the
// given transaction and appends an outbound movement. The subtraction is a
// conditional update whose affected-row count is checked, so two concurrent
// decrements of the same product can never drive the stock negative: the
// one that finds too little stock left fails with InsufficientStockError.
func Decrement(tx *gorm.DB, product *models.Product, qty int, reason, actor string, at time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", product.ID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("could not decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var current models.Product
		if err := tx.Select("stock").First(&current, product.ID).Error; err != nil {
			return fmt.Errorf("could not re-read stock: %w", err)
		}
		return &InsufficientStockError{
			ProductID: product.ID,
			SKU:       product.SKU,
			Requested: qty,
			Available: current.Stock,
		}
	}

	return appendMovement(tx, product.ID, models.MovementOutbound, qty, reason, actor, at)
}

// Increment adds qty to the product's stock (restocking) and appends an
// inbound movement, inside the given transaction.
func Increment(tx *gorm.DB, product *models.Product, qty int, reason, actor string, at time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	res := tx.Model(&models.Product{}).
		Where("id = ?", product.ID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("could not increment stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return appendMovement(tx, product.ID, models.MovementInbound, qty, reason, actor, at)
}

func appendMovement(tx *gorm.DB, productID uint, kind models.MovementKind, qty int, reason, actor string, at time.Time) error {
	if actor == "" {
		actor = models.ActorSystem
	}
	movement := models.StockMovement{
		ProductID:  productID,
		Kind:       kind,
		Quantity:   qty,
		Reason:     reason,
		OccurredAt: at,
		Actor:      actor,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("could not record stock movement: %w", err)
	}
	return nil
}
