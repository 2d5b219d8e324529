package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventario-backend/internal/models"
	"inventario-backend/internal/stock"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service commits sales: it validates a cart against live stock, decrements
// stock per line, snapshots prices, writes the movement trail and persists
// the sale header and lines, all inside one transaction. Either everything
// happens or nothing does.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger}
}

type LineRequest struct {
	ProductID uint
	Quantity  int
}

// CommitSaleRequest is the whole cart, validated as one structured value
// before anything touches the store.
type CommitSaleRequest struct {
	CustomerID uint
	OccurredAt time.Time
	Actor      string
	Lines      []LineRequest
}

// CommitSale turns the requested lines into a persisted Sale with
// decremented stock and one outbound movement per line. On any failure the
// store is left untouched.
//
// Concurrent commits competing for the same product's stock are serialized
// by the ledger's conditional decrement: exactly one of two competing
// commits can win the remaining stock, the other fails with
// InsufficientStockError.
func (s *Service) CommitSale(ctx context.Context, req CommitSaleRequest) (*models.Sale, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptySale
	}
	for i, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, &InvalidQuantityError{Line: i, Quantity: l.Quantity}
		}
	}

	actor := req.Actor
	if actor == "" {
		actor = models.ActorSystem
	}
	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	var sale *models.Sale
	var err error
	// a code collision aborts the transaction, so the retry reruns it with a
	// fresh code; at most once
	for attempt := 0; attempt < 2; attempt++ {
		sale, err = s.commitOnce(ctx, req, actor, occurredAt)
		if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
			s.logger.Warn("sale code collision, retrying with a fresh code")
			continue
		}
		break
	}
	if err != nil {
		if isSerializationFailure(err) {
			err = fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
		}
		s.logger.Warn("sale commit failed",
			zap.Uint("customer_id", req.CustomerID),
			zap.Int("lines", len(req.Lines)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("sale committed",
		zap.String("code", sale.Code),
		zap.Uint("customer_id", sale.CustomerID),
		zap.Int("lines", len(sale.Lines)),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	return sale, nil
}

func (s *Service) commitOnce(ctx context.Context, req CommitSaleRequest, actor string, occurredAt time.Time) (*models.Sale, error) {
	var sale *models.Sale

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, req.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownCustomer
			}
			return fmt.Errorf("could not load customer: %w", err)
		}

		code := NewSaleCode()
		movedAt := time.Now()
		total := decimal.Zero
		lines := make([]models.SaleLine, 0, len(req.Lines))

		// Lines are processed in caller order: later lines must see stock
		// already taken by earlier lines of the same sale.
		for i, l := range req.Lines {
			// re-read price and stock inside the transaction; the cart may
			// be stale
			var product models.Product
			if err := tx.First(&product, l.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &UnknownProductError{Line: i, ProductID: l.ProductID}
				}
				return fmt.Errorf("could not load product: %w", err)
			}

			reason := fmt.Sprintf("Sale %s", code)
			if err := stock.Decrement(tx, &product, l.Quantity, reason, actor, movedAt); err != nil {
				return err
			}

			unitPrice, subtotal := PriceLine(product.UnitPrice, l.Quantity)
			lines = append(lines, models.SaleLine{
				ProductID:       product.ID,
				Quantity:        l.Quantity,
				UnitPriceAtSale: unitPrice,
				Subtotal:        subtotal,
			})
			total = total.Add(subtotal)
		}

		sale = &models.Sale{
			Code:       code,
			CustomerID: customer.ID,
			OccurredAt: occurredAt,
			Total:      total,
			Lines:      lines,
		}
		if err := tx.Omit("Customer", "Lines.Product").Create(sale).Error; err != nil {
			return fmt.Errorf("could not persist sale: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// isSerializationFailure spots lock and serialization errors the drivers do
// not translate to gorm sentinels.
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
