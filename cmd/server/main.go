package main

import (
	"log"
	"strings"

	"inventario-backend/internal/audit"
	"inventario-backend/internal/auth"
	"inventario-backend/internal/catalog"
	"inventario-backend/internal/config"
	"inventario-backend/internal/customers"
	"inventario-backend/internal/dashboard"
	"inventario-backend/internal/database"
	"inventario-backend/internal/models"
	"inventario-backend/internal/sales"
	"inventario-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer logger.Sync()

	salesService := sales.NewService(database.DB, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin-only
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Post("/users", auth.CreateUserHandler())

	// Customers (sales group manages them, everyone can read)
	protected.Get("/customers", customers.ListCustomersHandler())
	protected.Get("/customers/:id", customers.GetCustomerHandler())
	customerWrites := protected.Group("/customers")
	customerWrites.Use(auth.RequireRole(models.RoleAdmin, models.RoleSales))
	customerWrites.Post("/", customers.CreateCustomerHandler())
	customerWrites.Put("/:id", customers.UpdateCustomerHandler())
	customerWrites.Delete("/:id", customers.DeleteCustomerHandler())

	// Product catalog (stock group manages it, everyone can read)
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Get("/products/:id", catalog.GetProductHandler())
	productWrites := protected.Group("/products")
	productWrites.Use(auth.RequireRole(models.RoleAdmin, models.RoleStock))
	productWrites.Post("/", catalog.CreateProductHandler())
	productWrites.Put("/:id", catalog.UpdateProductHandler())
	productWrites.Delete("/:id", catalog.DeleteProductHandler())
	productWrites.Post("/import", catalog.ImportProductsHandler())
	productWrites.Post("/:id/restock", stock.RestockHandler())

	// Stock movement trail
	movementReads := protected.Group("/stock-movements")
	movementReads.Use(auth.RequireRole(models.RoleAdmin, models.RoleStock))
	movementReads.Get("/", stock.ListMovementsHandler())

	// Sales
	protected.Get("/sales", sales.ListSalesHandler())
	protected.Get("/sales/:id", sales.GetSaleHandler())
	protected.Get("/sales/:id/receipt", sales.GetReceiptHandler())
	saleWrites := protected.Group("/sales")
	saleWrites.Use(auth.RequireRole(models.RoleAdmin, models.RoleSales))
	saleWrites.Post("/", sales.CreateSaleHandler(salesService))

	// Dashboard
	protected.Get("/dashboard/sales-chart", dashboard.SalesChartHandler())

	// Audit logs
	auditRoutes := protected.Group("/audit-logs")
	auditRoutes.Use(auth.RequireRole(models.RoleAdmin))
	auditRoutes.Get("/", audit.ListAuditLogsHandler())

	log.Println("server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
