package customers_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"inventario-backend/internal/customers"
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
	app.Get("/api/customers", customers.ListCustomersHandler())
	app.Get("/api/customers/:id", customers.GetCustomerHandler())
	app.Post("/api/customers", customers.CreateCustomerHandler())
	app.Put("/api/customers/:id", customers.UpdateCustomerHandler())
	app.Delete("/api/customers/:id", customers.DeleteCustomerHandler())
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.Header.Get("Content-Type") != "" && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp.StatusCode, decoded
}

func TestCreateCustomer(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/api/customers",
		`{"first_name":" Maria ","last_name":"Gomez","document_number":"30123456","email":"maria@example.com"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Maria", body["first_name"])
	assert.Equal(t, "30123456", body["document_number"])
}

func TestCreateCustomer_DuplicateDocument(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, "POST", "/api/customers",
		`{"first_name":"Maria","last_name":"Gomez","document_number":"30123456"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = doJSON(t, app, "POST", "/api/customers",
		`{"first_name":"Ana","last_name":"Diaz","document_number":"30123456"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreateCustomer_MissingFields(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, "POST", "/api/customers", `{"first_name":"Maria"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func listCustomers(t *testing.T, app *fiber.App, path string) []map[string]any {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var decoded []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func TestListCustomers_Search(t *testing.T) {
	app := newTestApp(t)
	seed := []models.Customer{
		{FirstName: "Maria", LastName: "Gomez", DocumentNumber: "30123456"},
		{FirstName: "Ana", LastName: "Diaz", DocumentNumber: "28999888"},
		{FirstName: "Pedro", LastName: "Gomez", DocumentNumber: "31555444"},
	}
	for i := range seed {
		require.NoError(t, database.DB.Create(&seed[i]).Error)
	}

	assert.Len(t, listCustomers(t, app, "/api/customers?search=gomez"), 2)
	assert.Len(t, listCustomers(t, app, "/api/customers?search=28999"), 1)
	assert.Len(t, listCustomers(t, app, "/api/customers"), 3)
}

func TestUpdateCustomer_Partial(t *testing.T) {
	app := newTestApp(t)
	customer := models.Customer{FirstName: "Maria", LastName: "Gomez", DocumentNumber: "30123456"}
	require.NoError(t, database.DB.Create(&customer).Error)

	status, body := doJSON(t, app, "PUT", "/api/customers/1", `{"email":"maria@new.example.com"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "maria@new.example.com", body["email"])
	assert.Equal(t, "Maria", body["first_name"])
}

func TestDeleteCustomer(t *testing.T) {
	app := newTestApp(t)
	customer := models.Customer{FirstName: "Maria", LastName: "Gomez", DocumentNumber: "30123456"}
	require.NoError(t, database.DB.Create(&customer).Error)

	req := httptest.NewRequest("DELETE", "/api/customers/1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	var count int64
	require.NoError(t, database.DB.Model(&models.Customer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteCustomer_WithSalesIsProtected(t *testing.T) {
	app := newTestApp(t)
	customer := models.Customer{FirstName: "Maria", LastName: "Gomez", DocumentNumber: "30123456"}
	require.NoError(t, database.DB.Create(&customer).Error)
	sale := models.Sale{
		Code:       "V-20260101000000-AAAAAAAA",
		CustomerID: customer.ID,
		Total:      decimal.RequireFromString("10.00"),
	}
	require.NoError(t, database.DB.Create(&sale).Error)

	req := httptest.NewRequest("DELETE", "/api/customers/1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var count int64
	require.NoError(t, database.DB.Model(&models.Customer{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetCustomer_NotFound(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, "GET", "/api/customers/999", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
