package database

import (
	"log"

	"inventario-backend/internal/config"
	"inventario-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	// TranslateError so unique and foreign key violations surface as
	// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("could not connect to the database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	log.Println("database connection established, migration complete")
}

// Migrate creates or updates the schema for every model. It is shared with
// the test stores.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Product{},
		&models.Sale{},
		&models.SaleLine{},
		&models.StockMovement{},
		&models.AuditLog{},
	)
}
