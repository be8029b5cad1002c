// Command seed writes demo sales history for one SKU so the forecaster has
// something to fit: roughly two months of daily sales with a mild upward
// trend and a Friday boost. Headers and line items are inserted directly
// with back-dated timestamps; stock is left untouched because the history
// is synthetic.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"nexusretail/catalog"
	"nexusretail/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	sku := flag.String("sku", "TEST-001", "SKU to seed sales history for")
	days := flag.Int("days", 60, "number of days of history to generate")
	flag.Parse()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	database.Connect(databaseURL)
	defer database.Close()
	database.InitSchema()

	db := database.GetDB()
	ctx := context.Background()

	product, err := catalog.FindBySKU(ctx, db, *sku)
	if err != nil {
		log.Fatalf("Product %q not found, create it first: %v", *sku, err)
	}

	log.Printf("Seeding %d days of sales history for %s...", *days, product.SKU)

	start := time.Now().UTC().AddDate(0, 0, -*days)
	created := 0

	for i := 0; i < *days; i++ {
		day := start.AddDate(0, 0, i)

		// Base sales of 1-5 units with a slow upward trend.
		qty := rand.Intn(5) + 1 + i/10
		if day.Weekday() == time.Friday {
			qty += 5
		}
		if qty <= 0 {
			continue
		}

		tx, err := db.Begin(ctx)
		if err != nil {
			log.Fatalf("Failed to start transaction: %v", err)
		}

		var transactionID int64
		headerQuery := `
			INSERT INTO transactions (total_amount, payment_method, created_at)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		total := float64(qty) * product.SellingPrice
		if err := tx.QueryRow(ctx, headerQuery, total, "CASH", day).Scan(&transactionID); err != nil {
			tx.Rollback(ctx)
			log.Fatalf("Failed to create transaction header: %v", err)
		}

		itemQuery := `
			INSERT INTO transaction_items (transaction_id, product_sku, quantity, price_at_sale)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.Exec(ctx, itemQuery, transactionID, product.SKU, qty, product.SellingPrice); err != nil {
			tx.Rollback(ctx)
			log.Fatalf("Failed to create transaction item: %v", err)
		}

		if err := tx.Commit(ctx); err != nil {
			log.Fatalf("Failed to commit seed transaction: %v", err)
		}
		created++
	}

	fmt.Printf("Done: created %d transactions for %s\n", created, product.SKU)
}
