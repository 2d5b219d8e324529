package audit_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"inventario-backend/internal/audit"
	"inventario-backend/internal/database"
	"inventario-backend/internal/models"
	"inventario-backend/internal/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLog(t *testing.T) {
	database.DB = testdb.New(t)

	err := audit.WriteLog(audit.LogOptions{
		Actor:       "cashier",
		EntityType:  "customer",
		EntityID:    7,
		Action:      models.AuditActionUpdate,
		Description: "Customer updated: Maria Gomez",
		Before:      map[string]string{"email": "old@example.com"},
		After:       map[string]string{"email": "new@example.com"},
	})
	require.NoError(t, err)

	var entry models.AuditLog
	require.NoError(t, database.DB.First(&entry).Error)
	assert.Equal(t, "cashier", entry.Actor)
	assert.Equal(t, "customer", entry.EntityType)
	assert.EqualValues(t, 7, entry.EntityID)
	assert.Equal(t, models.AuditActionUpdate, entry.Action)
	assert.JSONEq(t, `{"email":"old@example.com"}`, entry.BeforeData)
	assert.JSONEq(t, `{"email":"new@example.com"}`, entry.AfterData)
}

func TestWriteLog_Defaults(t *testing.T) {
	database.DB = testdb.New(t)

	require.NoError(t, audit.WriteLog(audit.LogOptions{
		EntityType: "product",
		EntityID:   1,
		Action:     models.AuditActionCreate,
	}))

	var entry models.AuditLog
	require.NoError(t, database.DB.First(&entry).Error)
	assert.Equal(t, models.ActorSystem, entry.Actor)
	assert.Equal(t, "null", entry.BeforeData)
	assert.Equal(t, "null", entry.AfterData)
}

func TestListAuditLogsHandler_Filters(t *testing.T) {
	database.DB = testdb.New(t)

	app := fiber.New()
	app.Get("/api/audit-logs", audit.ListAuditLogsHandler())

	require.NoError(t, audit.WriteLog(audit.LogOptions{
		Actor: "a", EntityType: "customer", EntityID: 1, Action: models.AuditActionCreate,
	}))
	require.NoError(t, audit.WriteLog(audit.LogOptions{
		Actor: "a", EntityType: "product", EntityID: 1, Action: models.AuditActionCreate,
	}))
	require.NoError(t, audit.WriteLog(audit.LogOptions{
		Actor: "a", EntityType: "product", EntityID: 2, Action: models.AuditActionDelete,
	}))

	fetch := func(path string) []map[string]any {
		req := httptest.NewRequest("GET", path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var decoded []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		return decoded
	}

	assert.Len(t, fetch("/api/audit-logs"), 3)
	assert.Len(t, fetch("/api/audit-logs?entity_type=product"), 2)
	assert.Len(t, fetch("/api/audit-logs?entity_type=product&entity_id=2"), 1)
}
