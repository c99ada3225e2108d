package analytics

import (
	"sort"
	"time"

	"github.com/sipertani/sipertani/internal/farm"
)

// TrendPoint is one period of a chart series.
type TrendPoint struct {
	Period string
	Value  float64
}

// Trend is an ordered chart series.
type Trend []TrendPoint

// Labels returns the period labels.
func (t Trend) Labels() []string {
	out := make([]string, len(t))
	for i, p := range t {
		out[i] = p.Period
	}
	return out
}

// Values returns the series values.
func (t Trend) Values() []float64 {
	out := make([]float64, len(t))
	for i, p := range t {
		out[i] = p.Value
	}
	return out
}

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// HarvestKgByMonth sums harvested kilograms per month.
func HarvestKgByMonth(harvests []farm.Harvest) Trend {
	buckets := map[string]float64{}
	for _, h := range harvests {
		if h.HarvestDate.IsZero() {
			continue
		}
		buckets[h.HarvestDate.Format(monthLayout)] += value(h.Quantity)
	}
	return ordered(buckets)
}

// PurchaseValueByMonth sums purchase totals per month.
func PurchaseValueByMonth(purchases []farm.Purchase) Trend {
	buckets := map[string]float64{}
	for _, p := range purchases {
		if p.Date.IsZero() {
			continue
		}
		buckets[p.Date.Format(monthLayout)] += value(p.TotalPrice)
	}
	return ordered(buckets)
}

// TemperatureByDay averages temperature per day.
func TemperatureByDay(readings []farm.Reading) Trend {
	return dailyAverage(readings, func(r farm.Reading) float64 { return value(r.Temperature) })
}

// HumidityByDay averages humidity per day.
func HumidityByDay(readings []farm.Reading) Trend {
	return dailyAverage(readings, func(r farm.Reading) float64 { return value(r.Humidity) })
}

// LastPeriods keeps the trailing n points.
func (t Trend) LastPeriods(n int) Trend {
	if n <= 0 || len(t) <= n {
		return t
	}
	return t[len(t)-n:]
}

func dailyAverage(readings []farm.Reading, pick func(farm.Reading) float64) Trend {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range readings {
		if r.RecordedAt.IsZero() {
			continue
		}
		day := r.RecordedAt.Format(dayLayout)
		sums[day] += pick(r)
		counts[day]++
	}
	for day, total := range sums {
		sums[day] = average(total, counts[day])
	}
	return ordered(sums)
}

func ordered(buckets map[string]float64) Trend {
	trend := make(Trend, 0, len(buckets))
	for period, total := range buckets {
		trend = append(trend, TrendPoint{Period: period, Value: total})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Period < trend[j].Period })
	return trend
}

// MonthLabel renders a "2006-01" period as "Jan 2006" in Indonesian.
func MonthLabel(period string) string {
	t, err := time.Parse(monthLayout, period)
	if err != nil {
		return period
	}
	return monthNames[t.Month()-1] + " " + t.Format("2006")
}

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}
