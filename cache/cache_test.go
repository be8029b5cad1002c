package cache

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"nexusretail/models"
)

func connectForTest(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	c := redis.NewClient(&redis.Options{Addr: addr})
	if err := c.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	c.Close()

	Connect(addr)
	t.Cleanup(Close)
}

func TestForecastCacheRoundTrip(t *testing.T) {
	connectForTest(t)
	ctx := context.Background()

	res := &models.ForecastResponse{
		SKU:                   "CACHE-001",
		Status:                "ok",
		CurrentStock:          12,
		PredictedWeeklyDemand: 30,
		Trend:                 "Growing",
		Recommendation:        "Order 18 units",
	}

	InvalidateForecast(ctx, "CACHE-001")
	_, ok := GetForecast(ctx, "CACHE-001")
	assert.False(t, ok)

	SetForecast(ctx, "CACHE-001", res)

	cached, ok := GetForecast(ctx, "CACHE-001")
	if assert.True(t, ok) {
		assert.Equal(t, res, cached)
	}
}

func TestInvalidateForecastDropsEntries(t *testing.T) {
	connectForTest(t)
	ctx := context.Background()

	SetForecast(ctx, "CACHE-A", &models.ForecastResponse{SKU: "CACHE-A", Status: "ok"})
	SetForecast(ctx, "CACHE-B", &models.ForecastResponse{SKU: "CACHE-B", Status: "ok"})

	InvalidateForecast(ctx, "CACHE-A", "CACHE-B")

	_, okA := GetForecast(ctx, "CACHE-A")
	_, okB := GetForecast(ctx, "CACHE-B")
	assert.False(t, okA)
	assert.False(t, okB)
}

func TestForecastCacheDisabledIsNoOp(t *testing.T) {
	// No Connect: every operation should be a silent no-op.
	ctx := context.Background()

	assert.False(t, Enabled())
	SetForecast(ctx, "CACHE-OFF", &models.ForecastResponse{SKU: "CACHE-OFF"})
	_, ok := GetForecast(ctx, "CACHE-OFF")
	assert.False(t, ok)
	InvalidateForecast(ctx, "CACHE-OFF")
}
