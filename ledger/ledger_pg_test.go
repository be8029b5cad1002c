package ledger

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusretail/catalog"
	"nexusretail/database"
	"nexusretail/models"
)

// connectPostgresForTest returns a pool against the database named by
// DATABASE_URL, skipping the test when Postgres is not reachable.
func connectPostgresForTest(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping ledger integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Skipf("Postgres unavailable, skipping: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("Postgres ping failed, skipping: %v", err)
	}
	t.Cleanup(pool.Close)

	require.NoError(t, database.EnsureSchema(ctx, pool))
	return pool
}

// createTestProduct registers a product under a unique SKU and cleans up the
// product and everything the sale protocol wrote for it.
func createTestProduct(t *testing.T, db *pgxpool.Pool, price float64, stock int) string {
	t.Helper()
	ctx := context.Background()

	sku := fmt.Sprintf("LEDGER-TEST-%d", time.Now().UnixNano())
	_, err := catalog.CreateProduct(ctx, db, models.CreateProductRequest{
		SKU:           sku,
		Name:          "Ledger Test Widget",
		CostPrice:     price / 2,
		SellingPrice:  price,
		StockQuantity: stock,
		Category:      "Test",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		// Deleting the headers cascades to their line items.
		db.Exec(ctx, `DELETE FROM transactions WHERE id IN (SELECT transaction_id FROM transaction_items WHERE product_sku = $1)`, sku)
		db.Exec(ctx, `DELETE FROM stock_movements WHERE product_sku = $1`, sku)
		db.Exec(ctx, `DELETE FROM products WHERE sku = $1`, sku)
	})
	return sku
}

func stockOf(t *testing.T, db *pgxpool.Pool, sku string) int {
	t.Helper()
	var stock int
	require.NoError(t, db.QueryRow(context.Background(), `SELECT stock_quantity FROM products WHERE sku = $1`, sku).Scan(&stock))
	return stock
}

func TestRecordSaleDeductsStockAndRejectsLaterOverdraw(t *testing.T) {
	db := connectPostgresForTest(t)
	ctx := context.Background()

	sku := createTestProduct(t, db, 25.50, 10)

	transactionID, total, err := RecordSale(ctx, db, "CASH", []models.TransactionItemInput{
		{ProductSKU: sku, Quantity: 4},
	})
	require.NoError(t, err)
	assert.Greater(t, transactionID, int64(0))
	assert.InDelta(t, 4*25.50, total, 1e-9)
	assert.Equal(t, 6, stockOf(t, db, sku))

	// The line item carries the price frozen at the moment of sale.
	var quantity int
	var priceAtSale float64
	itemQuery := `SELECT quantity, price_at_sale FROM transaction_items WHERE transaction_id = $1 AND product_sku = $2`
	require.NoError(t, db.QueryRow(ctx, itemQuery, transactionID, sku).Scan(&quantity, &priceAtSale))
	assert.Equal(t, 4, quantity)
	assert.Equal(t, 25.50, priceAtSale)

	// The deduction is audited as a sale movement.
	var quantityChanged, newQuantity int
	var reason string
	movementQuery := `SELECT quantity_changed, new_quantity, reason FROM stock_movements WHERE product_sku = $1 AND movement_type = 'sale'`
	require.NoError(t, db.QueryRow(ctx, movementQuery, sku).Scan(&quantityChanged, &newQuantity, &reason))
	assert.Equal(t, -4, quantityChanged)
	assert.Equal(t, 6, newQuantity)
	assert.Equal(t, fmt.Sprintf("Sale #%d", transactionID), reason)

	// Only 6 left now, so a sale of 7 is rejected and nothing moves.
	_, _, err = RecordSale(ctx, db, "CASH", []models.TransactionItemInput{
		{ProductSKU: sku, Quantity: 7},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 6, stockOf(t, db, sku))
}

func TestRecordSaleUnknownSKULeavesStockUnchanged(t *testing.T) {
	db := connectPostgresForTest(t)
	ctx := context.Background()

	sku := createTestProduct(t, db, 9.99, 8)
	missing := fmt.Sprintf("LEDGER-MISSING-%d", time.Now().UnixNano())

	_, _, err := RecordSale(ctx, db, "CARD", []models.TransactionItemInput{
		{ProductSKU: sku, Quantity: 2},
		{ProductSKU: missing, Quantity: 1},
	})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	// No partial mutation: the known product's stock is untouched and no
	// line item or movement was written for it.
	assert.Equal(t, 8, stockOf(t, db, sku))

	var items int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM transaction_items WHERE product_sku = $1`, sku).Scan(&items))
	assert.Equal(t, 0, items)

	var movements int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE product_sku = $1`, sku).Scan(&movements))
	assert.Equal(t, 0, movements)
}

func TestRecordSaleEmptySaleCommitsZeroTotal(t *testing.T) {
	db := connectPostgresForTest(t)
	ctx := context.Background()

	transactionID, total, err := RecordSale(ctx, db, "CASH", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	})

	assert.Greater(t, transactionID, int64(0))
	assert.Equal(t, 0.0, total)

	var storedTotal float64
	require.NoError(t, db.QueryRow(ctx, `SELECT total_amount FROM transactions WHERE id = $1`, transactionID).Scan(&storedTotal))
	assert.Equal(t, 0.0, storedTotal)
}
