// Package forecast turns a SKU's irregular per-sale history into a daily
// demand series and extrapolates near-term demand with a linear trend fit.
package forecast

import (
	"fmt"
	"sort"
	"time"
)

// MinSampleSize is the minimum number of historical line items required
// before a trend fit is attempted. Below it the engine reports an
// insufficient-data result instead of fitting a line through noise.
const MinSampleSize = 5

// horizonDays is how far past the last observed day the fit is projected.
const horizonDays = 7

// Trend labels. A zero slope is reported as Declining.
const (
	TrendGrowing   = "Growing"
	TrendDeclining = "Declining"
	TrendUnknown   = "Unknown"
)

// ItemSale is one historical line item: the owning transaction's timestamp
// and the quantity sold.
type ItemSale struct {
	Timestamp time.Time
	Quantity  int
}

// DailyPoint is the summed quantity sold on one calendar day.
type DailyPoint struct {
	Date     time.Time
	Quantity int
}

// Result is the outcome of a demand prediction. Sufficient is false when
// the history was too thin to fit; that is a valid degraded result, not an
// error.
type Result struct {
	PredictedWeeklyDemand int
	Trend                 string
	Recommendation        string
	Sufficient            bool
}

// BuildDailySeries groups line items by the UTC calendar date of their
// owning transaction, sums quantities per date and returns the points in
// ascending date order.
func BuildDailySeries(sales []ItemSale) []DailyPoint {
	byDay := make(map[time.Time]int)
	for _, s := range sales {
		t := s.Timestamp.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day] += s.Quantity
	}

	series := make([]DailyPoint, 0, len(byDay))
	for day, qty := range byDay {
		series = append(series, DailyPoint{Date: day, Quantity: qty})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series
}

// olsFit computes the ordinary least squares line y = slope*x + intercept.
// A series with a single distinct x degenerates to a flat line through the
// mean.
func olsFit(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// Predict fits a linear trend over the daily series built from the given
// sales history and projects total demand for the seven days following the
// last observed sale date. Each projected day is clamped at zero before
// summing; the sum is truncated to an integer.
func Predict(sales []ItemSale, currentStock int) Result {
	if len(sales) < MinSampleSize {
		return Result{
			PredictedWeeklyDemand: 0,
			Trend:                 TrendUnknown,
			Recommendation:        "Collect more sales data",
			Sufficient:            false,
		}
	}

	series := BuildDailySeries(sales)

	// Day-index relative to the earliest observed sale date.
	start := series[0].Date
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, p := range series {
		xs[i] = p.Date.Sub(start).Hours() / 24
		ys[i] = float64(p.Quantity)
	}

	slope, intercept := olsFit(xs, ys)

	lastDay := xs[len(xs)-1]
	var predicted float64
	for i := 1; i <= horizonDays; i++ {
		projection := slope*(lastDay+float64(i)) + intercept
		if projection > 0 {
			predicted += projection
		}
	}
	demand := int(predicted)

	trend := TrendDeclining
	if slope > 0 {
		trend = TrendGrowing
	}

	recommendation := "Stock is Healthy"
	if currentStock < demand {
		recommendation = fmt.Sprintf("Order %d units", demand-currentStock)
	}

	return Result{
		PredictedWeeklyDemand: demand,
		Trend:                 trend,
		Recommendation:        recommendation,
		Sufficient:            true,
	}
}
