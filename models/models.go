package models

import (
	"time"
)

// --- Core Models ---

// Product represents a sellable item in the catalog.
// The SKU (barcode) is the stable external identifier; stock_quantity is
// only ever mutated through the ledger's sale protocol or an audited
// correction.
type Product struct {
	ID            int       `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	CostPrice     float64   `json:"cost_price"`
	SellingPrice  float64   `json:"selling_price"`
	StockQuantity int       `json:"stock_quantity"`
	Category      string    `json:"category"`
	CreatedAt     time.Time `json:"created_at"`
}

// Transaction is a completed sale. It is immutable once created; its line
// items are appended during the same recording operation and never outlive it.
type Transaction struct {
	ID            int64             `json:"id"`
	TotalAmount   float64           `json:"total_amount"`
	PaymentMethod string            `json:"payment_method"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []TransactionItem `json:"items,omitempty"`
}

// TransactionItem is an individual line within a Transaction. PriceAtSale is
// the unit price frozen at the moment of sale, not the product's live price.
type TransactionItem struct {
	ID            int64   `json:"id"`
	TransactionID int64   `json:"transaction_id"`
	ProductSKU    string  `json:"product_sku"`
	Quantity      int     `json:"quantity"`
	PriceAtSale   float64 `json:"price_at_sale"`
}

// StockMovement logs any change in a product's stock quantity.
type StockMovement struct {
	ID              string    `json:"id"`
	ProductSKU      string    `json:"product_sku"`
	MovementType    string    `json:"movement_type"`
	QuantityChanged int       `json:"quantity_changed"`
	NewQuantity     int       `json:"new_quantity"`
	Reason          *string   `json:"reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// --- API Request/Response Structs ---

// CreateProductRequest defines the body for registering a new product.
type CreateProductRequest struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	CostPrice     float64 `json:"cost_price"`
	SellingPrice  float64 `json:"selling_price"`
	StockQuantity int     `json:"stock_quantity"`
	Category      string  `json:"category"`
}

// CorrectStockRequest sets a product's stock to an absolute quantity.
type CorrectStockRequest struct {
	StockQuantity int     `json:"stock_quantity"`
	Reason        *string `json:"reason,omitempty"`
}

// TransactionItemInput is one requested line of a sale.
type TransactionItemInput struct {
	ProductSKU string `json:"product_sku"`
	Quantity   int    `json:"quantity"`
}

// CreateTransactionRequest defines the body for recording a sale.
type CreateTransactionRequest struct {
	PaymentMethod string                 `json:"payment_method"`
	Items         []TransactionItemInput `json:"items"`
}

// --- Paginated Responses ---

// Pagination details for paginated responses.
type Pagination struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

// PaginatedProductsResponse for the product catalog listing.
type PaginatedProductsResponse struct {
	Items      []Product  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// PaginatedTransactionsResponse for the sales history listing.
type PaginatedTransactionsResponse struct {
	Items      []Transaction `json:"items"`
	Pagination Pagination    `json:"pagination"`
}
