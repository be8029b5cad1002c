package routes

import (
	"github.com/gofiber/fiber/v2"

	"nexusretail/handlers"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// --- Catalog ---
	products := api.Group("/products")
	products.Post("/", handlers.HandleCreateProduct)
	products.Get("/", handlers.HandleListProducts)
	products.Get("/:sku", handlers.HandleGetProductBySKU)
	products.Put("/:sku/stock", handlers.HandleCorrectStock)

	// --- Ledger ---
	transactions := api.Group("/transactions")
	transactions.Post("/", handlers.HandleCreateTransaction)
	transactions.Get("/", handlers.HandleListTransactions)
	transactions.Get("/:transactionId", handlers.HandleGetTransactionByID)

	// --- Dashboard ---
	api.Get("/dashboard/summary", handlers.HandleGetDashboardSummary)

	// --- AI ---
	ai := api.Group("/ai")
	ai.Get("/predict/:sku", handlers.HandlePredictDemand)
	ai.Post("/chat", handlers.HandleChat)
}
