package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"inventario-backend/internal/audit"
	"inventario-backend/internal/auth"
	"inventario-backend/internal/database"
	"inventario-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProductResponse struct {
	ID           uint   `json:"id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	UnitPrice    string `json:"unit_price"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorder_level"`
	NeedsRestock bool   `json:"needs_restock"`
}

type CreateProductRequest struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	UnitPrice    string `json:"unit_price"`
	ReorderLevel int    `json:"reorder_level"`
}

// Stock is deliberately absent here: on-hand quantity only changes through
// the ledger (sales and restocks), never by direct edit.
type UpdateProductRequest struct {
	SKU          *string `json:"sku"`
	Name         *string `json:"name"`
	UnitPrice    *string `json:"unit_price"`
	ReorderLevel *int    `json:"reorder_level"`
}

func toResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		UnitPrice:    p.UnitPrice.StringFixed(2),
		Stock:        p.Stock,
		ReorderLevel: p.ReorderLevel,
		NeedsRestock: p.NeedsRestock(),
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", raw)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("price cannot be negative")
	}
	return price.Round(2), nil
}

// GET /api/products?search=&needs_restock=true&page=1&page_size=10
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			dbq = dbq.Where("LOWER(sku) LIKE ? OR LOWER(name) LIKE ?", like, like)
		}
		if c.Query("needs_restock") == "true" {
			dbq = dbq.Where("stock <= reorder_level")
		}

		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		var products []models.Product
		if err := dbq.
			Order("name ASC").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list products")
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, toResponse(&products[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return c.JSON(toResponse(&product))
	}
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.SKU = strings.TrimSpace(body.SKU)
		body.Name = strings.TrimSpace(body.Name)

		if body.SKU == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sku and name are required")
		}
		if body.ReorderLevel < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "reorder_level cannot be negative")
		}

		price, err := parsePrice(body.UnitPrice)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var existing models.Product
		if err := database.DB.Where("sku = ?", body.SKU).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "a product with this SKU already exists")
		}

		product := models.Product{
			SKU:          body.SKU,
			Name:         body.Name,
			UnitPrice:    price,
			ReorderLevel: body.ReorderLevel,
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create product")
		}

		_ = audit.WriteLog(audit.LogOptions{
			Actor:       auth.ActorName(c),
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Product created: %s (%s)", product.Name, product.SKU),
			After:       product,
		})

		return c.Status(fiber.StatusCreated).JSON(toResponse(&product))
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		before := product

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.SKU != nil {
			sku := strings.TrimSpace(*body.SKU)
			if sku == "" {
				return fiber.NewError(fiber.StatusBadRequest, "sku cannot be empty")
			}
			var other models.Product
			if err := database.DB.Where("sku = ? AND id <> ?", sku, product.ID).First(&other).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "a product with this SKU already exists")
			}
			product.SKU = sku
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			product.Name = name
		}
		if body.UnitPrice != nil {
			price, err := parsePrice(*body.UnitPrice)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			product.UnitPrice = price
		}
		if body.ReorderLevel != nil {
			if *body.ReorderLevel < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "reorder_level cannot be negative")
			}
			product.ReorderLevel = *body.ReorderLevel
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update product")
		}

		_ = audit.WriteLog(audit.LogOptions{
			Actor:       auth.ActorName(c),
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Product updated: %s (%s)", product.Name, product.SKU),
			Before:      before,
			After:       product,
		})

		return c.JSON(toResponse(&product))
	}
}

// DELETE /api/products/:id
// Products referenced by sale lines or movements cannot be deleted; the
// history must stay intact.
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}

		var lineCount int64
		if err := database.DB.Model(&models.SaleLine{}).Where("product_id = ?", product.ID).Count(&lineCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not check product references")
		}
		if lineCount > 0 {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("product appears in %d sale lines and cannot be deleted", lineCount))
		}

		var movementCount int64
		if err := database.DB.Model(&models.StockMovement{}).Where("product_id = ?", product.ID).Count(&movementCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not check product references")
		}
		if movementCount > 0 {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("product has %d stock movements and cannot be deleted", movementCount))
		}

		if err := database.DB.Delete(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete product")
		}

		_ = audit.WriteLog(audit.LogOptions{
			Actor:       auth.ActorName(c),
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Product deleted: %s (%s)", product.Name, product.SKU),
			Before:      product,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
