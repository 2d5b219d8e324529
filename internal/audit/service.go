package audit

import (
	"encoding/json"
	"fmt"

	"inventario-backend/internal/database"
	"inventario-backend/internal/models"
)

type LogOptions struct {
	Actor       string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog appends a CRUD audit entry. Sales and stock movements are never
// edited, so there is no undo here; corrections happen through new records.
func WriteLog(opts LogOptions) error {
	// jsonb columns want "null", not an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	actor := opts.Actor
	if actor == "" {
		actor = models.ActorSystem
	}

	entry := models.AuditLog{
		Actor:       actor,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}

	return nil
}
