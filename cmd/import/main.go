// Command import loads the master product catalog from a fixed-schema CSV
// into a running backend through its HTTP API.
//
// Expected header: sku,name,description,cost_price,selling_price,stock_quantity,category
// Price columns may carry currency formatting ("R 1,200.50"). Rows whose SKU
// is already registered are not re-created; their stock is set through the
// audited correction endpoint instead, tagged with this run's batch id.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type productPayload struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	CostPrice     float64 `json:"cost_price"`
	SellingPrice  float64 `json:"selling_price"`
	StockQuantity int     `json:"stock_quantity"`
	Category      string  `json:"category"`
}

type stockPayload struct {
	StockQuantity int    `json:"stock_quantity"`
	Reason        string `json:"reason"`
}

// cleanCurrency turns "R 1,200.50" into 1200.50.
func cleanCurrency(value string) (float64, error) {
	cleaned := strings.NewReplacer("R", "", ",", "", " ", "").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return 0, nil
	}
	return strconv.ParseFloat(cleaned, 64)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	defaultAPI := os.Getenv("API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8000"
	}

	file := flag.String("file", "master_stock.csv", "path to the master catalog CSV")
	apiURL := flag.String("api", defaultAPI, "base URL of the running backend")
	flag.Parse()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *file, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		log.Fatalf("Failed to read CSV header: %v", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"sku", "name", "cost_price", "selling_price", "stock_quantity", "category"} {
		if _, ok := col[required]; !ok {
			log.Fatalf("CSV is missing required column %q", required)
		}
	}

	batchID := uuid.NewString()
	log.Printf("Import batch %s -> %s", batchID, *apiURL)

	var created, updated, failed int
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Line %d: skipping malformed row: %v", line, err)
			failed++
			continue
		}

		costPrice, err := cleanCurrency(record[col["cost_price"]])
		if err != nil {
			log.Printf("Line %d: bad cost_price: %v", line, err)
			failed++
			continue
		}
		sellingPrice, err := cleanCurrency(record[col["selling_price"]])
		if err != nil {
			log.Printf("Line %d: bad selling_price: %v", line, err)
			failed++
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(record[col["stock_quantity"]]))
		if err != nil {
			log.Printf("Line %d: bad stock_quantity: %v", line, err)
			failed++
			continue
		}

		payload := productPayload{
			SKU:           strings.TrimSpace(record[col["sku"]]),
			Name:          strings.TrimSpace(record[col["name"]]),
			CostPrice:     costPrice,
			SellingPrice:  sellingPrice,
			StockQuantity: qty,
			Category:      strings.TrimSpace(record[col["category"]]),
		}
		if i, ok := col["description"]; ok {
			if desc := strings.TrimSpace(record[i]); desc != "" {
				payload.Description = &desc
			}
		}
		if payload.SKU == "" {
			log.Printf("Line %d: skipping row with empty sku", line)
			failed++
			continue
		}

		status, err := postJSON(*apiURL+"/api/v1/products", payload)
		switch {
		case err != nil:
			log.Printf("Line %d: request failed for %s: %v", line, payload.SKU, err)
			failed++
		case status == http.StatusCreated:
			created++
		case status == http.StatusBadRequest:
			// Already registered: set its stock via the audited correction.
			correction := stockPayload{
				StockQuantity: qty,
				Reason:        fmt.Sprintf("Import batch %s", batchID),
			}
			url := fmt.Sprintf("%s/api/v1/products/%s/stock", *apiURL, payload.SKU)
			status, err := putJSON(url, correction)
			if err != nil || status != http.StatusOK {
				log.Printf("Line %d: stock correction failed for %s (status %d): %v", line, payload.SKU, status, err)
				failed++
				continue
			}
			updated++
		default:
			log.Printf("Line %d: unexpected status %d for %s", line, status, payload.SKU)
			failed++
		}
	}

	log.Printf("Import batch %s complete: %d created, %d updated, %d failed", batchID, created, updated, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func postJSON(url string, payload interface{}) (int, error) {
	return sendJSON(http.MethodPost, url, payload)
}

func putJSON(url string, payload interface{}) (int, error) {
	return sendJSON(http.MethodPut, url, payload)
}

func sendJSON(method, url string, payload interface{}) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
