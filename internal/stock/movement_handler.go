package stock

import (
	"fmt"
	"strconv"
	"time"

	"inventario-backend/internal/audit"
	"inventario-backend/internal/auth"
	"inventario-backend/internal/database"
	"inventario-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MovementResponse struct {
	ID         uint   `json:"id"`
	ProductID  uint   `json:"product_id"`
	SKU        string `json:"sku"`
	Product    string `json:"product"`
	Kind       string `json:"kind"`
	Quantity   int    `json:"quantity"`
	Reason     string `json:"reason"`
	OccurredAt string `json:"occurred_at"`
	Actor      string `json:"actor"`
}

type RestockRequest struct {
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// GET /api/stock-movements?product_id=1&page=1&page_size=20
func ListMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StockMovement{}).Preload("Product")

		if pidStr := c.Query("product_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err == nil && pid > 0 {
				dbq = dbq.Where("product_id = ?", pid)
			}
		}

		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		var movements []models.StockMovement
		if err := dbq.
			Order("occurred_at DESC, id DESC").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list stock movements")
		}

		resp := make([]MovementResponse, 0, len(movements))
		for _, m := range movements {
			resp = append(resp, MovementResponse{
				ID:         m.ID,
				ProductID:  m.ProductID,
				SKU:        m.Product.SKU,
				Product:    m.Product.Name,
				Kind:       string(m.Kind),
				Quantity:   m.Quantity,
				Reason:     m.Reason,
				OccurredAt: m.OccurredAt.Format("2006-01-02 15:04:05"),
				Actor:      m.Actor,
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/products/:id/restock
func RestockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("id")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		var body RestockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be greater than zero")
		}

		var product models.Product
		if err := database.DB.First(&product, productID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "product not found")
		}

		reason := body.Note
		if reason == "" {
			reason = "Restock"
		}
		actor := auth.ActorName(c)

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			return Increment(tx, &product, body.Quantity, reason, actor, time.Now())
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not restock product")
		}

		_ = audit.WriteLog(audit.LogOptions{
			Actor:       actor,
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Restock: %s +%d", product.Name, body.Quantity),
			After:       body,
		})

		// re-read so the response carries the new stock level
		if err := database.DB.First(&product, productID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not reload product")
		}

		return c.JSON(fiber.Map{
			"id":    product.ID,
			"sku":   product.SKU,
			"name":  product.Name,
			"stock": product.Stock,
		})
	}
}
