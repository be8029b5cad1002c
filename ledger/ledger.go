// Package ledger implements the transactional stock ledger: it records
// completed sales, atomically deducts inventory and freezes the unit price
// of every line at the moment of sale.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nexusretail/catalog"
	"nexusretail/models"
)

// ErrInsufficientStock is returned when a sale requests more units of a
// product than are in stock, counted across all lines of the same sale.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidQuantity is returned when a line requests a non-positive quantity.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// productState is a product's price and stock as read under row lock during
// the validation pass. The captured price is the one recorded on the line
// item; it is never re-read after validation.
type productState struct {
	Name         string
	SellingPrice float64
	Stock        int
}

// pricedLine is a validated sale line with its frozen unit price.
type pricedLine struct {
	SKU       string
	Quantity  int
	UnitPrice float64
}

// uniqueSKUs returns the distinct SKUs referenced by the requested items,
// sorted. Row locks are always taken in this canonical order so two
// concurrent sales listing the same products in opposite order wait on each
// other instead of deadlocking.
func uniqueSKUs(items []models.TransactionItemInput) []string {
	seen := make(map[string]struct{}, len(items))
	skus := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductSKU]; ok {
			continue
		}
		seen[item.ProductSKU] = struct{}{}
		skus = append(skus, item.ProductSKU)
	}
	sort.Strings(skus)
	return skus
}

// validateItems checks every requested line against the locked product
// states and prices the sale. Duplicate SKU lines stay separate, but stock
// sufficiency is enforced on the running requested total per SKU so two
// lines cannot jointly overdraw the same stock. No mutation happens here;
// any error leaves the sale entirely unapplied.
func validateItems(states map[string]productState, items []models.TransactionItemInput) ([]pricedLine, float64, error) {
	lines := make([]pricedLine, 0, len(items))
	requested := make(map[string]int)
	var total float64

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, 0, fmt.Errorf("%w: %s", ErrInvalidQuantity, item.ProductSKU)
		}

		state, ok := states[item.ProductSKU]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, item.ProductSKU)
		}

		requested[item.ProductSKU] += item.Quantity
		if requested[item.ProductSKU] > state.Stock {
			return nil, 0, fmt.Errorf("%w: %s", ErrInsufficientStock, state.Name)
		}

		lines = append(lines, pricedLine{
			SKU:       item.ProductSKU,
			Quantity:  item.Quantity,
			UnitPrice: state.SellingPrice,
		})
		total += state.SellingPrice * float64(item.Quantity)
	}

	return lines, total, nil
}

// RecordSale records a completed sale as a transaction header plus its line
// items, deducting stock along the way. The whole operation runs in one
// database transaction:
//
//  1. Every referenced product row is locked (SELECT ... FOR UPDATE) and the
//     full item set is validated before any mutation, so concurrent sales on
//     the same SKU serialize on the row lock and a failed sale leaves stock
//     untouched.
//  2. The header is inserted first to obtain the transaction id, then each
//     line deducts stock and records the price captured during validation.
//
// A sale with no items is accepted and produces a zero-total transaction.
// Returns the new transaction id and total.
func RecordSale(ctx context.Context, db *pgxpool.Pool, paymentMethod string, items []models.TransactionItemInput) (int64, float64, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Validation pass: lock and read every referenced product once, in
	// canonical SKU order.
	states := make(map[string]productState)
	for _, sku := range uniqueSKUs(items) {
		var state productState
		lockQuery := `SELECT name, selling_price, stock_quantity FROM products WHERE sku = $1 FOR UPDATE`
		if err := tx.QueryRow(ctx, lockQuery, sku).Scan(&state.Name, &state.SellingPrice, &state.Stock); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, 0, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, sku)
			}
			return 0, 0, fmt.Errorf("failed to lock product row: %w", err)
		}
		states[sku] = state
	}

	lines, total, err := validateItems(states, items)
	if err != nil {
		return 0, 0, err
	}

	// Header first: line items reference the transaction id.
	var transactionID int64
	headerQuery := `INSERT INTO transactions (total_amount, payment_method) VALUES ($1, $2) RETURNING id`
	if err := tx.QueryRow(ctx, headerQuery, total, paymentMethod).Scan(&transactionID); err != nil {
		return 0, 0, fmt.Errorf("failed to create transaction header: %w", err)
	}

	for _, line := range lines {
		var newQuantity int
		deductQuery := `
			UPDATE products
			SET stock_quantity = stock_quantity - $1
			WHERE sku = $2
			RETURNING stock_quantity
		`
		if err := tx.QueryRow(ctx, deductQuery, line.Quantity, line.SKU).Scan(&newQuantity); err != nil {
			return 0, 0, fmt.Errorf("failed to deduct stock for %s: %w", line.SKU, err)
		}

		itemQuery := `
			INSERT INTO transaction_items (transaction_id, product_sku, quantity, price_at_sale)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.Exec(ctx, itemQuery, transactionID, line.SKU, line.Quantity, line.UnitPrice); err != nil {
			return 0, 0, fmt.Errorf("failed to record line item for %s: %w", line.SKU, err)
		}

		movementQuery := `
			INSERT INTO stock_movements (product_sku, movement_type, quantity_changed, new_quantity, reason)
			VALUES ($1, 'sale', $2, $3, $4)
		`
		reason := fmt.Sprintf("Sale #%d", transactionID)
		if _, err := tx.Exec(ctx, movementQuery, line.SKU, -line.Quantity, newQuantity, reason); err != nil {
			return 0, 0, fmt.Errorf("failed to log stock movement for %s: %w", line.SKU, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to finalize sale: %w", err)
	}

	log.Printf("Recorded sale #%d: %d line(s), total %.2f (%s)", transactionID, len(lines), total, paymentMethod)
	return transactionID, total, nil
}
