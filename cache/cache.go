// Package cache holds a best-effort Redis cache for forecast results.
// Forecasts are pure functions of the ledger, so every cached entry for a
// SKU is invalidated as soon as a sale touches that SKU. When Redis is not
// configured or unreachable, every operation is a no-op and callers fall
// through to a fresh computation.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"nexusretail/models"
)

const (
	forecastKeyPrefix = "forecast:"
	forecastTTL       = 15 * time.Minute
)

var client *redis.Client

// Connect initializes the shared Redis client. A missing address or a
// failed ping leaves caching disabled rather than aborting startup.
func Connect(addr string) {
	if addr == "" {
		log.Println("REDIS_ADDR not set, forecast caching disabled")
		return
	}

	c := redis.NewClient(&redis.Options{Addr: addr})
	if err := c.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis ping failed, forecast caching disabled: %v", err)
		return
	}

	client = c
	log.Println("Successfully connected to Redis")
}

// Close releases the Redis client.
func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

// Enabled reports whether a Redis client is configured.
func Enabled() bool {
	return client != nil
}

// GetForecast returns the cached forecast for a SKU, if present.
func GetForecast(ctx context.Context, sku string) (*models.ForecastResponse, bool) {
	if client == nil {
		return nil, false
	}

	payload, err := client.Get(ctx, forecastKeyPrefix+sku).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Forecast cache read failed for %s: %v", sku, err)
		}
		return nil, false
	}

	var res models.ForecastResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		log.Printf("Discarding malformed forecast cache entry for %s: %v", sku, err)
		return nil, false
	}

	return &res, true
}

// SetForecast stores a forecast result for a SKU with a short TTL.
func SetForecast(ctx context.Context, sku string, res *models.ForecastResponse) {
	if client == nil {
		return
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return
	}

	if err := client.Set(ctx, forecastKeyPrefix+sku, payload, forecastTTL).Err(); err != nil {
		log.Printf("Forecast cache write failed for %s: %v", sku, err)
	}
}

// InvalidateForecast drops the cached forecasts for the given SKUs. Called
// after a committed sale for every SKU the sale touched.
func InvalidateForecast(ctx context.Context, skus ...string) {
	if client == nil || len(skus) == 0 {
		return
	}

	keys := make([]string, len(skus))
	for i, sku := range skus {
		keys[i] = forecastKeyPrefix + sku
	}

	if err := client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Forecast cache invalidation failed: %v", err)
	}
}
