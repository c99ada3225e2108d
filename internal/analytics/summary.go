// Package analytics derives dashboard figures from already loaded and scoped
// collections. Every function is pure; callers recompute on each render.
package analytics

import (
	"math"
	"time"

	"github.com/sipertani/sipertani/internal/farm"
)

// HarvestSummary feeds the harvest stat cards.
type HarvestSummary struct {
	Count      int
	TotalKg    float64
	ReadyKg    float64
	StockValue float64
	AverageKg  float64
	ByGrade    map[farm.Grade]float64
	ByStatus   map[farm.HarvestStatus]int
	LatestDate time.Time
}

// SummariseHarvests totals quantity and stock value of harvests.
func SummariseHarvests(harvests []farm.Harvest) HarvestSummary {
	summary := HarvestSummary{
		Count:    len(harvests),
		ByGrade:  map[farm.Grade]float64{},
		ByStatus: map[farm.HarvestStatus]int{},
	}
	for _, h := range harvests {
		qty := value(h.Quantity)
		summary.TotalKg += qty
		summary.StockValue += qty * value(h.UnitPrice)
		if h.Status == farm.HarvestReady {
			summary.ReadyKg += qty
		}
		if h.Grade != "" {
			summary.ByGrade[h.Grade] += qty
		}
		summary.ByStatus[h.Status]++
		if h.HarvestDate.After(summary.LatestDate) {
			summary.LatestDate = h.HarvestDate.Time
		}
	}
	summary.AverageKg = average(summary.TotalKg, summary.Count)
	return summary
}

// PurchaseSummary feeds the purchase and sales stat cards.
type PurchaseSummary struct {
	Count    int
	TotalKg  float64
	Total    float64
	Average  float64
	ByStatus map[farm.PurchaseStatus]int
}

// SummarisePurchases totals spend (or revenue, for sellers) of purchases.
func SummarisePurchases(purchases []farm.Purchase) PurchaseSummary {
	summary := PurchaseSummary{
		Count:    len(purchases),
		ByStatus: map[farm.PurchaseStatus]int{},
	}
	for _, p := range purchases {
		summary.TotalKg += value(p.Quantity)
		summary.Total += value(p.TotalPrice)
		summary.ByStatus[p.Status]++
	}
	summary.Average = average(summary.Total, summary.Count)
	return summary
}

// ReadingSummary feeds the monitoring stat cards.
type ReadingSummary struct {
	Count              int
	AverageTemperature float64
	AverageHumidity    float64
	Latest             *farm.Reading
}

// SummariseReadings averages temperature and humidity.
func SummariseReadings(readings []farm.Reading) ReadingSummary {
	summary := ReadingSummary{Count: len(readings)}
	var temp, humidity float64
	for i := range readings {
		r := readings[i]
		temp += value(r.Temperature)
		humidity += value(r.Humidity)
		if summary.Latest == nil || r.RecordedAt.After(summary.Latest.RecordedAt.Time) {
			summary.Latest = &r
		}
	}
	summary.AverageTemperature = average(temp, summary.Count)
	summary.AverageHumidity = average(humidity, summary.Count)
	return summary
}

// PlotSummary feeds the land stat cards.
type PlotSummary struct {
	Count     int
	TotalArea float64
}

// SummarisePlots totals plot area in hectares.
func SummarisePlots(plots []farm.Plot) PlotSummary {
	summary := PlotSummary{Count: len(plots)}
	for _, p := range plots {
		summary.TotalArea += value(p.Area)
	}
	return summary
}

// PlantingSummary counts plot plantings per status.
type PlantingSummary struct {
	Count    int
	ByStatus map[farm.PlantingStatus]int
}

// SummarisePlantings counts plantings per growth status.
func SummarisePlantings(plantings []farm.PlotPlanting) PlantingSummary {
	summary := PlantingSummary{Count: len(plantings), ByStatus: map[farm.PlantingStatus]int{}}
	for _, p := range plantings {
		summary.ByStatus[p.Status]++
	}
	return summary
}

// value reads a lenient number, mapping NaN and infinities to zero.
func value(n farm.Number) float64 {
	f := n.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func average(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
