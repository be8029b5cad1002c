package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nexusretail/models"
)

// ErrProductNotFound is returned when a SKU does not resolve to a product.
var ErrProductNotFound = errors.New("product not found")

// ErrDuplicateSKU is returned when creating a product with a SKU that is
// already registered.
var ErrDuplicateSKU = errors.New("sku already registered")

// ErrNegativeStock is returned when a correction targets a negative quantity.
var ErrNegativeStock = errors.New("stock quantity cannot be negative")

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// CreateProduct registers a new product in the catalog.
func CreateProduct(ctx context.Context, db *pgxpool.Pool, req models.CreateProductRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (sku, name, description, cost_price, selling_price, stock_quantity, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	product := models.Product{
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		CostPrice:     req.CostPrice,
		SellingPrice:  req.SellingPrice,
		StockQuantity: req.StockQuantity,
		Category:      req.Category,
	}

	err := db.QueryRow(ctx, query,
		req.SKU, req.Name, req.Description, req.CostPrice, req.SellingPrice, req.StockQuantity, req.Category,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSKU, req.SKU)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &product, nil
}

// FindBySKU looks up a single product by its SKU.
func FindBySKU(ctx context.Context, db *pgxpool.Pool, sku string) (*models.Product, error) {
	query := `
		SELECT id, sku, name, description, cost_price, selling_price, stock_quantity, category, created_at
		FROM products
		WHERE sku = $1
	`
	var p models.Product
	err := db.QueryRow(ctx, query, sku).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.CostPrice, &p.SellingPrice, &p.StockQuantity, &p.Category, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, sku)
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	return &p, nil
}

// CorrectStock sets a product's stock to an absolute quantity and records an
// audited "correction" stock movement. This and the ledger's sale protocol
// are the only code paths allowed to mutate stock.
func CorrectStock(ctx context.Context, db *pgxpool.Pool, sku string, newQuantity int, reason *string) (int, error) {
	if newQuantity < 0 {
		return 0, ErrNegativeStock
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldQuantity int
	lockQuery := `SELECT stock_quantity FROM products WHERE sku = $1 FOR UPDATE`
	if err := tx.QueryRow(ctx, lockQuery, sku).Scan(&oldQuantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", ErrProductNotFound, sku)
		}
		return 0, fmt.Errorf("failed to lock product row: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE products SET stock_quantity = $1 WHERE sku = $2`, newQuantity, sku); err != nil {
		return 0, fmt.Errorf("failed to correct stock: %w", err)
	}

	movementQuery := `
		INSERT INTO stock_movements (product_sku, movement_type, quantity_changed, new_quantity, reason)
		VALUES ($1, 'correction', $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, movementQuery, sku, newQuantity-oldQuantity, newQuantity, reason); err != nil {
		return 0, fmt.Errorf("failed to log stock movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit stock correction: %w", err)
	}

	log.Printf("Stock corrected for %s: %d -> %d", sku, oldQuantity, newQuantity)
	return newQuantity, nil
}
