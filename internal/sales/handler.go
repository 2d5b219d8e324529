package sales

import (
	"errors"
	"strconv"
	"time"

	"inventario-backend/internal/auth"
	"inventario-backend/internal/database"
	"inventario-backend/internal/models"
	"inventario-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
)

type CreateSaleLineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateSaleRequest struct {
	CustomerID uint                    `json:"customer_id"`
	OccurredAt string                  `json:"occurred_at"` // RFC 3339, optional
	Lines      []CreateSaleLineRequest `json:"lines"`
}

type SaleLineResponse struct {
	ID              uint   `json:"id"`
	ProductID       uint   `json:"product_id"`
	SKU             string `json:"sku"`
	Product         string `json:"product"`
	Quantity        int    `json:"quantity"`
	UnitPriceAtSale string `json:"unit_price_at_sale"`
	Subtotal        string `json:"subtotal"`
}

type SaleResponse struct {
	ID         uint               `json:"id"`
	Code       string             `json:"code"`
	CustomerID uint               `json:"customer_id"`
	Customer   string             `json:"customer"`
	OccurredAt string             `json:"occurred_at"`
	Total      string             `json:"total"`
	CreatedAt  string             `json:"created_at"`
	Lines      []SaleLineResponse `json:"lines,omitempty"`
}

func saleToResponse(s *models.Sale, withLines bool) SaleResponse {
	resp := SaleResponse{
		ID:         s.ID,
		Code:       s.Code,
		CustomerID: s.CustomerID,
		Customer:   s.Customer.FullName(),
		OccurredAt: s.OccurredAt.Format(time.RFC3339),
		Total:      s.Total.StringFixed(2),
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
	if withLines {
		resp.Lines = make([]SaleLineResponse, 0, len(s.Lines))
		for _, l := range s.Lines {
			resp.Lines = append(resp.Lines, SaleLineResponse{
				ID:              l.ID,
				ProductID:       l.ProductID,
				SKU:             l.Product.SKU,
				Product:         l.Product.Name,
				Quantity:        l.Quantity,
				UnitPriceAtSale: l.UnitPriceAtSale.StringFixed(2),
				Subtotal:        l.Subtotal.StringFixed(2),
			})
		}
	}
	return resp
}

// POST /api/sales
func CreateSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.CustomerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "customer_id is required")
		}

		var occurredAt time.Time
		if body.OccurredAt != "" {
			var err error
			occurredAt, err = time.Parse(time.RFC3339, body.OccurredAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "occurred_at must be RFC 3339")
			}
		}

		req := CommitSaleRequest{
			CustomerID: body.CustomerID,
			OccurredAt: occurredAt,
			Actor:      auth.ActorName(c),
		}
		for _, l := range body.Lines {
			req.Lines = append(req.Lines, LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
		}

		sale, err := svc.CommitSale(c.UserContext(), req)
		if err != nil {
			return commitErrorToHTTP(err)
		}

		// reload with the customer for the response
		var full models.Sale
		if err := database.DB.Preload("Customer").Preload("Lines.Product").First(&full, sale.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not reload sale")
		}

		return c.Status(fiber.StatusCreated).JSON(saleToResponse(&full, true))
	}
}

func commitErrorToHTTP(err error) error {
	var insufficientErr *stock.InsufficientStockError
	var quantityErr *InvalidQuantityError
	var productErr *UnknownProductError

	switch {
	case errors.Is(err, ErrEmptySale):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &quantityErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnknownCustomer):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &productErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &insufficientErr):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrConcurrencyConflict):
		return fiber.NewError(fiber.StatusConflict, "the sale conflicted with a concurrent update, please retry")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "could not commit sale")
	}
}

// GET /api/sales?page=1&page_size=10
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		var sales []models.Sale
		if err := database.DB.
			Preload("Customer").
			Order("occurred_at DESC, id DESC").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list sales")
		}

		resp := make([]SaleResponse, 0, len(sales))
		for i := range sales {
			resp = append(resp, saleToResponse(&sales[i], false))
		}
		return c.JSON(resp)
	}
}

// GET /api/sales/:id
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid sale id")
		}

		var sale models.Sale
		if err := database.DB.
			Preload("Customer").
			Preload("Lines.Product").
			First(&sale, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "sale not found")
		}

		return c.JSON(saleToResponse(&sale, true))
	}
}

// GET /api/sales/:id/receipt
// Structured receipt for the sale, consumed by whatever renders the customer
// document.
func GetReceiptHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid sale id")
		}

		var sale models.Sale
		if err := database.DB.
			Preload("Customer").
			Preload("Lines.Product").
			First(&sale, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "sale not found")
		}

		items := make([]fiber.Map, 0, len(sale.Lines))
		for _, l := range sale.Lines {
			items = append(items, fiber.Map{
				"sku":        l.Product.SKU,
				"product":    l.Product.Name,
				"quantity":   l.Quantity,
				"unit_price": l.UnitPriceAtSale.StringFixed(2),
				"subtotal":   l.Subtotal.StringFixed(2),
			})
		}

		return c.JSON(fiber.Map{
			"code": sale.Code,
			"date": sale.OccurredAt.Format("2006-01-02 15:04"),
			"customer": fiber.Map{
				"name":     sale.Customer.FullName(),
				"document": sale.Customer.DocumentNumber,
				"address":  sale.Customer.Address,
			},
			"items": items,
			"total": sale.Total.StringFixed(2),
		})
	}
}
