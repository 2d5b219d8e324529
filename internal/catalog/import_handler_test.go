package catalog_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"inventario-backend/internal/catalog"
	"inventario-backend/internal/database"
	"inventario-backend/internal/models"
	"inventario-backend/internal/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, workbook.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf))
	return buf.Bytes()
}

func uploadWorkbook(t *testing.T, app *fiber.App, filename string, content []byte) (int, catalog.ImportResult) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/products/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result catalog.ImportResult
	if resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	}
	return resp.StatusCode, result
}

func newImportApp(t *testing.T) *fiber.App {
	t.Helper()
	database.DB = testdb.New(t)

	app := fiber.New()
	app.Post("/api/products/import", catalog.ImportProductsHandler())
	return app
}

func TestImportProducts(t *testing.T) {
	app := newImportApp(t)
	content := buildWorkbook(t, [][]any{
		{"sku", "name", "unit_price", "initial_stock"},
		{"SKU-1", "Yerba 1kg", "12.50", 20},
		{"SKU-2", "Azucar 1kg", "3.00", 0},
	})

	status, result := uploadWorkbook(t, app, "products.xlsx", content)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Skipped)

	var product models.Product
	require.NoError(t, database.DB.Where("sku = ?", "SKU-1").First(&product).Error)
	assert.Equal(t, 20, product.Stock)
	assert.Equal(t, "12.50", product.UnitPrice.StringFixed(2))

	// opening stock goes through the ledger
	var movement models.StockMovement
	require.NoError(t, database.DB.Where("product_id = ?", product.ID).First(&movement).Error)
	assert.Equal(t, models.MovementInbound, movement.Kind)
	assert.Equal(t, 20, movement.Quantity)
	assert.Equal(t, "Opening stock (import)", movement.Reason)

	// the zero-stock row must not leave a movement
	var count int64
	require.NoError(t, database.DB.Model(&models.StockMovement{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImportProducts_SkipsBadRows(t *testing.T) {
	app := newImportApp(t)
	require.NoError(t, database.DB.Create(&models.Product{
		SKU: "SKU-DUP", Name: "Existing", UnitPrice: decimal.RequireFromString("1.00"),
	}).Error)

	content := buildWorkbook(t, [][]any{
		{"sku", "name", "unit_price", "initial_stock"},
		{"SKU-OK", "Fine", "5.00", 1},
		{"SKU-DUP", "Duplicate", "5.00", 1},
		{"", "No SKU", "5.00", 1},
		{"SKU-BAD", "Bad price", "abc", 1},
	})

	status, result := uploadWorkbook(t, app, "products.xlsx", content)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Skipped, 3)
	assert.Equal(t, 3, result.Skipped[0].Row)
}

func TestImportProducts_RejectsNonXLSX(t *testing.T) {
	app := newImportApp(t)

	status, _ := uploadWorkbook(t, app, "products.csv", []byte("sku,name\n"))
	assert.Equal(t, fiber.StatusBadRequest, status)
}
