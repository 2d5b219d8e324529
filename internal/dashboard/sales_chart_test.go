package dashboard_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"inventario-backend/internal/dashboard"
	"inventario-backend/internal/database"
	"inventario-backend/internal/models"
	"inventario-backend/internal/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	database.DB = testdb.New(t)

	app := fiber.New()
	app.Get("/api/dashboard/sales-chart", dashboard.SalesChartHandler())
	return app
}

func seedSale(t *testing.T, code string, occurredAt time.Time, total string) {
	t.Helper()
	customer := models.Customer{FirstName: "Maria", LastName: "Gomez", DocumentNumber: "D-" + code}
	require.NoError(t, database.DB.Create(&customer).Error)
	sale := models.Sale{
		Code:       code,
		CustomerID: customer.ID,
		OccurredAt: occurredAt,
		Total:      decimal.RequireFromString(total),
	}
	require.NoError(t, database.DB.Create(&sale).Error)
}

func fetchChart(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp.StatusCode, decoded
}

func TestSalesChart_Daily(t *testing.T) {
	app := newTestApp(t)
	now := time.Now()
	seedSale(t, "V-1", now, "10.00")
	seedSale(t, "V-2", now, "15.50")
	seedSale(t, "V-3", now.AddDate(0, 0, -2), "4.50")
	// outside the 7-day window
	seedSale(t, "V-4", now.AddDate(0, 0, -30), "99.00")

	status, body := fetchChart(t, app, "/api/dashboard/sales-chart")
	require.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, "daily", body["period"])
	assert.EqualValues(t, 3, body["total_count"])
	assert.Equal(t, "30.00", body["total_revenue"])

	points, ok := body["points"].([]any)
	require.True(t, ok)
	require.Len(t, points, 7)

	last := points[6].(map[string]any)
	assert.Equal(t, now.Format("2006-01-02"), last["label"])
	assert.EqualValues(t, 2, last["count"])
	assert.Equal(t, "25.50", last["revenue"])
}

func TestSalesChart_MonthlyBucketCount(t *testing.T) {
	app := newTestApp(t)

	status, body := fetchChart(t, app, "/api/dashboard/sales-chart?period=monthly")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "monthly", body["period"])

	points := body["points"].([]any)
	assert.Len(t, points, 12)
	assert.Equal(t, "0.00", body["total_revenue"])
}

func TestSalesChart_RejectsBadCount(t *testing.T) {
	app := newTestApp(t)

	status, _ := fetchChart(t, app, "/api/dashboard/sales-chart?count=0")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = fetchChart(t, app, "/api/dashboard/sales-chart?count=999")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
