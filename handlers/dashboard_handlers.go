package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"nexusretail/database"
	"nexusretail/models"
)

// HandleGetDashboardSummary fetches the KPI summary for the main dashboard.
func HandleGetDashboardSummary(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	var summary models.DashboardSummary

	// 1. Catalog size and inventory cost value
	catalogQuery := `SELECT COUNT(*), COALESCE(SUM(cost_price * stock_quantity), 0) FROM products`
	if err := db.QueryRow(ctx, catalogQuery).Scan(&summary.ProductCount, &summary.InventoryCostValue); err != nil {
		log.Printf("Error fetching catalog summary: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch catalog summary"})
	}

	// 2. Sales revenue and transaction count
	salesQuery := `SELECT COALESCE(SUM(total_amount), 0), COUNT(*) FROM transactions`
	if err := db.QueryRow(ctx, salesQuery).Scan(&summary.TotalSalesRevenue, &summary.TransactionCount); err != nil {
		log.Printf("Error fetching sales summary: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch sales summary"})
	}

	// 3. Average order value
	if summary.TransactionCount > 0 {
		summary.AverageOrderValue = summary.TotalSalesRevenue / float64(summary.TransactionCount)
	}

	// 4. Top selling products
	topQuery := `
		SELECT p.sku, p.name,
		       COALESCE(SUM(ti.quantity), 0) AS quantity_sold,
		       COALESCE(SUM(ti.quantity * ti.price_at_sale), 0) AS revenue
		FROM transaction_items ti
		JOIN products p ON ti.product_sku = p.sku
		GROUP BY p.sku, p.name
		ORDER BY quantity_sold DESC
		LIMIT 5
	`
	rows, err := db.Query(ctx, topQuery)
	if err != nil {
		log.Printf("Error fetching top selling products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch top selling products"})
	}
	defer rows.Close()

	summary.TopSellingProducts = make([]models.TopProduct, 0)
	for rows.Next() {
		var p models.TopProduct
		if err := rows.Scan(&p.ProductSKU, &p.ProductName, &p.QuantitySold, &p.Revenue); err != nil {
			log.Printf("Error scanning top product row: %v", err)
			continue
		}
		summary.TopSellingProducts = append(summary.TopSellingProducts, p)
	}

	return c.JSON(fiber.Map{"status": "success", "data": summary})
}
