package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusretail/cache"
	"nexusretail/catalog"
	"nexusretail/database"
	"nexusretail/models"
)

// setupDatabaseForTest wires the shared pool the handlers resolve via
// database.GetDB, skipping the test when Postgres is not reachable.
func setupDatabaseForTest(t *testing.T) {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping handler integration tests")
	}

	// Reachability check first: database.Connect aborts the process on
	// failure, which would fail the run instead of skipping it.
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Skipf("Postgres unavailable, skipping: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("Postgres ping failed, skipping: %v", err)
	}
	pool.Close()

	database.Connect(url)
	t.Cleanup(database.Close)
	require.NoError(t, database.EnsureSchema(ctx, database.GetDB()))
}

func TestHandleCorrectStockAppliesCorrectionAndDropsCachedForecast(t *testing.T) {
	setupDatabaseForTest(t)
	ctx := context.Background()
	db := database.GetDB()

	sku := fmt.Sprintf("CORRECTION-TEST-%d", time.Now().UnixNano())
	_, err := catalog.CreateProduct(ctx, db, models.CreateProductRequest{
		SKU:           sku,
		Name:          "Correction Test Widget",
		SellingPrice:  9.99,
		StockQuantity: 5,
		Category:      "Test",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Exec(ctx, `DELETE FROM stock_movements WHERE product_sku = $1`, sku)
		db.Exec(ctx, `DELETE FROM products WHERE sku = $1`, sku)
	})

	// A correction changes the forecast's current-stock input, so any cached
	// forecast for the SKU must be dropped. Exercised against Redis when
	// REDIS_ADDR points at a reachable instance, a no-op otherwise.
	cache.Connect(os.Getenv("REDIS_ADDR"))
	t.Cleanup(cache.Close)
	if cache.Enabled() {
		cache.SetForecast(ctx, sku, &models.ForecastResponse{SKU: sku, Status: "ok", CurrentStock: 5})
	}

	app := fiber.New()
	app.Put("/api/v1/products/:sku/stock", HandleCorrectStock)

	body, _ := json.Marshal(models.CorrectStockRequest{StockQuantity: 42})
	req := httptest.NewRequest("PUT", "/api/v1/products/"+sku+"/stock", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var stock int
	require.NoError(t, db.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE sku = $1`, sku).Scan(&stock))
	assert.Equal(t, 42, stock)

	if cache.Enabled() {
		_, ok := cache.GetForecast(ctx, sku)
		assert.False(t, ok, "cached forecast must not survive a stock correction")
	}
}

func TestHandleCorrectStockRejectsNegativeQuantity(t *testing.T) {
	setupDatabaseForTest(t)

	app := fiber.New()
	app.Put("/api/v1/products/:sku/stock", HandleCorrectStock)

	body, _ := json.Marshal(models.CorrectStockRequest{StockQuantity: -1})
	req := httptest.NewRequest("PUT", "/api/v1/products/ANY-SKU/stock", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
