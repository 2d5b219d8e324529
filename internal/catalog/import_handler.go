package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"inventario-backend/internal/audit"
	"inventario-backend/internal/auth"
	"inventario-backend/internal/database"
	"inventario-backend/internal/models"
	"inventario-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  []ImportRowError `json:"skipped"`
}

// POST /api/products/import
// Bulk-imports products from an .xlsx upload with columns
// sku | name | unit_price | initial_stock. Initial stock is booked through
// the ledger so it leaves an inbound movement like any other stock change.
func ImportProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file upload failed: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not open file: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read Excel file: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "the Excel file has no sheets")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read sheet: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "the Excel file is empty")
		}

		// skip a header row if the first cell does not look like a SKU value
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if firstCell == "SKU" || strings.Contains(firstCell, "CODE") {
				startIndex = 1
			}
		}

		actor := auth.ActorName(c)
		result := ImportResult{Skipped: []ImportRowError{}}

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			rowNum := i + 1

			if len(row) < 3 {
				result.Skipped = append(result.Skipped, ImportRowError{Row: rowNum, Reason: "needs at least sku, name and unit_price"})
				continue
			}

			sku := strings.TrimSpace(row[0])
			name := strings.TrimSpace(row[1])
			if sku == "" || name == "" {
				result.Skipped = append(result.Skipped, ImportRowError{Row: rowNum, Reason: "sku and name are required"})
				continue
			}

			price, err := decimal.NewFromString(strings.TrimSpace(row[2]))
			if err != nil || price.IsNegative() {
				result.Skipped = append(result.Skipped, ImportRowError{Row: rowNum, Reason: "invalid unit_price"})
				continue
			}

			initialStock := 0
			if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
				initialStock, err = strconv.Atoi(strings.TrimSpace(row[3]))
				if err != nil || initialStock < 0 {
					result.Skipped = append(result.Skipped, ImportRowError{Row: rowNum, Reason: "invalid initial_stock"})
					continue
				}
			}

			var existing models.Product
			if err := database.DB.Where("sku = ?", sku).First(&existing).Error; err == nil {
				result.Skipped = append(result.Skipped, ImportRowError{Row: rowNum, Reason: fmt.Sprintf("SKU %s already exists", sku)})
				continue
			}

			product := models.Product{
				SKU:       sku,
				Name:      name,
				UnitPrice: price.Round(2),
			}

			err = database.DB.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&product).Error; err != nil {
					return err
				}
				if initialStock > 0 {
					return stock.Increment(tx, &product, initialStock, "Opening stock (import)", actor, time.Now())
				}
				return nil
			})
			if err != nil {
				result.Skipped = append(result.Skipped, ImportRowError{Row: rowNum, Reason: "could not save product"})
				continue
			}

			result.Imported++
		}

		_ = audit.WriteLog(audit.LogOptions{
			Actor:       actor,
			EntityType:  "product",
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Bulk import: %d products from %s", result.Imported, fileHeader.Filename),
			After:       result,
		})

		return c.JSON(result)
	}
}
