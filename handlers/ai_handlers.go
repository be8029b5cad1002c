package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"nexusretail/cache"
	"nexusretail/catalog"
	"nexusretail/database"
	"nexusretail/forecast"
	"nexusretail/models"
)

// HandlePredictDemand forecasts the next seven days of demand for a SKU and
// recommends a restock quantity. Results are cached per SKU; the cache is
// invalidated whenever a sale touches the SKU.
func HandlePredictDemand(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	sku := c.Params("sku")

	if cached, ok := cache.GetForecast(ctx, sku); ok {
		return c.JSON(fiber.Map{"status": "success", "data": cached})
	}

	product, err := catalog.FindBySKU(ctx, db, sku)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
		}
		log.Printf("Error fetching product %s for forecast: %v", sku, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve product"})
	}

	// Sales history: every line item for the SKU with the timestamp of the
	// owning transaction.
	query := `
		SELECT t.created_at, ti.quantity
		FROM transaction_items ti
		JOIN transactions t ON ti.transaction_id = t.id
		WHERE ti.product_sku = $1
	`
	rows, err := db.Query(ctx, query, sku)
	if err != nil {
		log.Printf("Error fetching sales history for %s: %v", sku, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve sales history"})
	}
	defer rows.Close()

	sales := make([]forecast.ItemSale, 0)
	for rows.Next() {
		var s forecast.ItemSale
		if err := rows.Scan(&s.Timestamp, &s.Quantity); err != nil {
			log.Printf("Error scanning sales history row: %v", err)
			continue
		}
		sales = append(sales, s)
	}

	result := forecast.Predict(sales, product.StockQuantity)

	status := "ok"
	if !result.Sufficient {
		status = "insufficient_data"
	}

	response := &models.ForecastResponse{
		SKU:                   sku,
		Status:                status,
		CurrentStock:          product.StockQuantity,
		PredictedWeeklyDemand: result.PredictedWeeklyDemand,
		Trend:                 result.Trend,
		Recommendation:        result.Recommendation,
	}

	cache.SetForecast(ctx, sku, response)

	return c.JSON(fiber.Map{"status": "success", "data": response})
}
