package models

// ForecastResponse is the payload returned by the demand prediction
// endpoint. Status is "ok" for a fitted forecast and "insufficient_data"
// when fewer than five historical line items exist for the SKU; the
// latter is still a well-formed result, not an error.
type ForecastResponse struct {
	SKU                   string `json:"sku"`
	Status                string `json:"status"`
	CurrentStock          int    `json:"current_stock"`
	PredictedWeeklyDemand int    `json:"predicted_weekly_demand"`
	Trend                 string `json:"trend"`
	Recommendation        string `json:"recommendation"`
}

// ChatRequest carries the user's free-text prompt to the assistant.
type ChatRequest struct {
	Text string `json:"text"`
}

// ChatResponse is the assistant's reply. Action, when set, tells the
// frontend to switch tabs (e.g. "NAVIGATE_POS").
type ChatResponse struct {
	Text   string  `json:"text"`
	Action *string `json:"action"`
}

// TopProduct summarises one product's sales performance.
type TopProduct struct {
	ProductSKU   string  `json:"product_sku"`
	ProductName  string  `json:"product_name"`
	QuantitySold int     `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

// DashboardSummary holds the KPIs for the main dashboard.
type DashboardSummary struct {
	ProductCount       int          `json:"product_count"`
	InventoryCostValue float64      `json:"inventory_cost_value"`
	TotalSalesRevenue  float64      `json:"total_sales_revenue"`
	TransactionCount   int          `json:"transaction_count"`
	AverageOrderValue  float64      `json:"average_order_value"`
	TopSellingProducts []TopProduct `json:"top_selling_products"`
}
