package customers

import (
	"fmt"
	"strconv"
	"strings"

	"inventario-backend/internal/audit"
	"inventario-backend/internal/auth"
	"inventario-backend/internal/database"
	"inventario-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CustomerResponse struct {
	ID             uint   `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	CreatedAt      string `json:"created_at"`
}

type CreateCustomerRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
}

type UpdateCustomerRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	DocumentNumber *string `json:"document_number"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
}

func toResponse(c *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		DocumentNumber: c.DocumentNumber,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		CreatedAt:      c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/customers?search=&page=1&page_size=10
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Customer{})

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			dbq = dbq.Where(
				"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(document_number) LIKE ? OR LOWER(email) LIKE ?",
				like, like, like, like,
			)
		}

		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		var customers []models.Customer
		if err := dbq.
			Order("last_name ASC, first_name ASC").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list customers")
		}

		resp := make([]CustomerResponse, 0, len(customers))
		for i := range customers {
			resp = append(resp, toResponse(&customers[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/customers/:id
func GetCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return c.JSON(toResponse(&customer))
	}
}

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.FirstName = strings.TrimSpace(body.FirstName)
		body.LastName = strings.TrimSpace(body.LastName)
		body.DocumentNumber = strings.TrimSpace(body.DocumentNumber)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Phone = strings.TrimSpace(body.Phone)

		if body.FirstName == "" || body.LastName == "" || body.DocumentNumber == "" {
			return fiber.NewError(fiber.StatusBadRequest, "first_name, last_name and document_number are required")
		}

		var existing models.Customer
		if err := database.DB.Where("document_number = ?", body.DocumentNumber).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "a customer with this document number already exists")
		}

		customer := models.Customer{
			FirstName:      body.FirstName,
			LastName:       body.LastName,
			DocumentNumber: body.DocumentNumber,
			Email:          body.Email,
			Phone:          body.Phone,
			Address:        body.Address,
		}

		if err := database.DB.Create(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create customer")
		}

		_ = audit.WriteLog(audit.LogOptions{
			Actor:       auth.ActorName(c),
			EntityType:  "customer",
			EntityID:    customer.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Customer created: %s", customer.FullName()),
			After:       customer,
		})

		return c.Status(fiber.StatusCreated).JSON(toResponse(&customer))
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		before := customer

		var body UpdateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.FirstName != nil {
			customer.FirstName = strings.TrimSpace(*body.FirstName)
		}
		if body.LastName != nil {
			customer.LastName = strings.TrimSpace(*body.LastName)
		}
		if body.DocumentNumber != nil {
			doc := strings.TrimSpace(*body.DocumentNumber)
			if doc == "" {
				return fiber.NewError(fiber.StatusBadRequest, "document_number cannot be empty")
			}
			var other models.Customer
			if err := database.DB.Where("document_number = ? AND id <> ?", doc, customer.ID).First(&other).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "a customer with this document number already exists")
			}
			customer.DocumentNumber = doc
		}
		if body.Email != nil {
			customer.Email = strings.TrimSpace(strings.ToLower(*body.Email))
		}
		if body.Phone != nil {
			customer.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Address != nil {
			customer.Address = *body.Address
		}

		if customer.FirstName == "" || customer.LastName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "first_name and last_name cannot be empty")
		}

		if err := database.DB.Save(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update customer")
		}

		_ = audit.WriteLog(audit.LogOptions{
			Actor:       auth.ActorName(c),
			EntityType:  "customer",
			EntityID:    customer.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Customer updated: %s", customer.FullName()),
			Before:      before,
			After:       customer,
		})

		return c.JSON(toResponse(&customer))
	}
}

// DELETE /api/customers/:id
// Customers with sales cannot be deleted; the sale history references them.
func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}

		var saleCount int64
		if err := database.DB.Model(&models.Sale{}).Where("customer_id = ?", customer.ID).Count(&saleCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not check customer sales")
		}
		if saleCount > 0 {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("customer has %d sales and cannot be deleted", saleCount))
		}

		if err := database.DB.Delete(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete customer")
		}

		_ = audit.WriteLog(audit.LogOptions{
			Actor:       auth.ActorName(c),
			EntityType:  "customer",
			EntityID:    customer.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Customer deleted: %s", customer.FullName()),
			Before:      customer,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
