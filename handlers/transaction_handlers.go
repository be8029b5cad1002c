package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nexusretail/cache"
	"nexusretail/catalog"
	"nexusretail/database"
	"nexusretail/ledger"
	"nexusretail/models"
	"nexusretail/utils"
)

// HandleCreateTransaction records a new sale through the ledger.
func HandleCreateTransaction(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	var req models.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if req.PaymentMethod == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "payment_method is required"})
	}

	transactionID, total, err := ledger.RecordSale(ctx, db, req.PaymentMethod, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": err.Error()})
		case errors.Is(err, ledger.ErrInsufficientStock):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": err.Error()})
		case errors.Is(err, ledger.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
		default:
			log.Printf("Error recording sale: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to record sale"})
		}
	}

	// Stock changed, so any cached forecast for these SKUs is stale.
	skus := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		skus = append(skus, item.ProductSKU)
	}
	cache.InvalidateForecast(ctx, skus...)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":         "success",
		"transaction_id": transactionID,
		"total":          total,
	})
}

// HandleListTransactions lists the sales history, paginated, newest first.
func HandleListTransactions(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 10)
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	query := `
		SELECT id, total_amount, payment_method, created_at
		FROM transactions
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := db.Query(ctx, query, pageSize, offset)
	if err != nil {
		log.Printf("Error listing transactions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve transactions"})
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.TotalAmount, &t.PaymentMethod, &t.CreatedAt); err != nil {
			log.Printf("Error scanning transaction: %v", err)
			continue
		}
		transactions = append(transactions, t)
	}

	var totalItems int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&totalItems); err != nil {
		log.Printf("Error counting transactions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to count transactions"})
	}

	response := models.PaginatedTransactionsResponse{
		Items:      transactions,
		Pagination: utils.CreatePagination(totalItems, page, pageSize),
	}

	return c.JSON(fiber.Map{"status": "success", "data": response})
}

// HandleGetTransactionByID retrieves a single transaction with its line items.
func HandleGetTransactionByID(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	transactionID, err := c.ParamsInt("transactionId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid transaction id"})
	}

	transaction, err := getTransactionByID(ctx, db, int64(transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Transaction not found"})
		}
		log.Printf("Error fetching transaction %d: %v", transactionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve transaction"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": transaction})
}

// getTransactionByID is a helper to fetch a transaction header and its items.
func getTransactionByID(ctx context.Context, db *pgxpool.Pool, transactionID int64) (*models.Transaction, error) {
	var t models.Transaction
	headerQuery := `SELECT id, total_amount, payment_method, created_at FROM transactions WHERE id = $1`
	if err := db.QueryRow(ctx, headerQuery, transactionID).Scan(&t.ID, &t.TotalAmount, &t.PaymentMethod, &t.CreatedAt); err != nil {
		return nil, err
	}

	itemsQuery := `
		SELECT id, transaction_id, product_sku, quantity, price_at_sale
		FROM transaction_items
		WHERE transaction_id = $1
		ORDER BY id ASC
	`
	rows, err := db.Query(ctx, itemsQuery, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t.Items = make([]models.TransactionItem, 0)
	for rows.Next() {
		var item models.TransactionItem
		if err := rows.Scan(&item.ID, &item.TransactionID, &item.ProductSKU, &item.Quantity, &item.PriceAtSale); err != nil {
			return nil, err
		}
		t.Items = append(t.Items, item)
	}

	return &t, nil
}
