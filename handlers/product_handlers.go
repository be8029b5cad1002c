package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"nexusretail/cache"
	"nexusretail/catalog"
	"nexusretail/database"
	"nexusretail/models"
	"nexusretail/utils"
)

// HandleCreateProduct registers a new product in the catalog.
func HandleCreateProduct(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if req.SKU == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "sku and name are required"})
	}
	if req.StockQuantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "stock_quantity cannot be negative"})
	}

	product, err := catalog.CreateProduct(ctx, db, req)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateSKU) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "SKU already registered"})
		}
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create product"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": product})
}

// HandleListProducts lists the catalog, paginated.
func HandleListProducts(c *fiber.Ctx) error {
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
		SELECT id, sku, name, description, cost_price, selling_price, stock_quantity, category, created_at
		FROM products
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := db.Query(ctx, query, pageSize, offset)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve products"})
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.CostPrice, &p.SellingPrice, &p.StockQuantity, &p.Category, &p.CreatedAt); err != nil {
			log.Printf("Error scanning product: %v", err)
			continue
		}
		products = append(products, p)
	}

	var totalItems int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&totalItems); err != nil {
		log.Printf("Error counting products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to count products"})
	}

	response := models.PaginatedProductsResponse{
		Items:      products,
		Pagination: utils.CreatePagination(totalItems, page, pageSize),
	}

	return c.JSON(fiber.Map{"status": "success", "data": response})
}

// HandleGetProductBySKU retrieves a single product by its SKU.
func HandleGetProductBySKU(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	sku := c.Params("sku")

	product, err := catalog.FindBySKU(ctx, db, sku)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
		}
		log.Printf("Error fetching product %s: %v", sku, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve product"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": product})
}

// HandleCorrectStock sets a product's stock to an absolute quantity via the
// catalog's audited correction operation.
func HandleCorrectStock(c *fiber.Ctx) error {
	db := database.GetDB()
	ctx := context.Background()

	sku := c.Params("sku")

	var req models.CorrectStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}

	newQuantity, err := catalog.CorrectStock(ctx, db, sku, req.StockQuantity, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
		case errors.Is(err, catalog.ErrNegativeStock):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "stock_quantity cannot be negative"})
		default:
			log.Printf("Error correcting stock for %s: %v", sku, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to correct stock"})
		}
	}

	// The correction changed the forecast's current-stock input.
	cache.InvalidateForecast(ctx, sku)

	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"sku": sku, "stock_quantity": newQuantity}})
}
