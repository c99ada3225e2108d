package pages

import (
	"context"
	"html/template"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sipertani/sipertani/internal/analytics"
	"github.com/sipertani/sipertani/internal/analytics/svg"
	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/farm"
	"github.com/sipertani/sipertani/internal/resource"
)

// DashboardView is the data of pages/dashboard.html.
type DashboardView struct {
	Error  string
	Stats  []Stat
	Charts []ChartView
	Tables []TableView
}

// ChartView is one chart card. An empty SVG renders the empty state.
type ChartView struct {
	Title string
	SVG   template.HTML
}

// TableView is a small read-only table.
type TableView struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Collect starts loading path on g and returns the controller holding the
// result once g is done.
func Collect[T farm.Record](ctx context.Context, g *errgroup.Group, kit *Kit, env *Env, path string, sample func() []T) *resource.Controller[T] {
	ctrl := loader(kit, env, path, sample).Bind(ctx)
	g.Go(func() error {
		_ = ctrl.Load(ctx)
		return nil
	})
	return ctrl
}

// LoadError describes the first failed load, empty when all succeeded.
func LoadError(errs ...error) string {
	for _, err := range errs {
		if err != nil {
			return "Sebagian data gagal dimuat: " + backend.Message(err)
		}
	}
	return ""
}

// TrendChart renders trend as a line chart, empty when there is no data.
func TrendChart(kit *Kit, title, unit string, trend analytics.Trend, monthly bool) template.HTML {
	if len(trend) == 0 {
		return ""
	}
	labels := trend.Labels()
	if monthly {
		for i, l := range labels {
			labels[i] = analytics.MonthLabel(l)
		}
	}
	html, err := svg.Line(svg.DefaultWidth, svg.DefaultHeight, trend.Values(), labels, svg.LineOpts{
		Title:    title,
		Unit:     unit,
		ShowDots: true,
	})
	if err != nil {
		kit.logger().Warn("render line chart", slog.String("title", title), slog.Any("error", err))
		return ""
	}
	return html
}

// BarChart renders one series of bars, empty when there is no data.
func BarChart(kit *Kit, title, unit string, labels []string, values []float64) template.HTML {
	if len(values) == 0 {
		return ""
	}
	html, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, labels, []svg.Series{{Label: title, Values: values}}, svg.BarOpts{
		Title: title,
		Unit:  unit,
	})
	if err != nil {
		kit.logger().Warn("render bar chart", slog.String("title", title), slog.Any("error", err))
		return ""
	}
	return html
}

// DonutChart renders slices, empty when every slice is zero.
func DonutChart(kit *Kit, title string, slices []svg.Slice) template.HTML {
	total := 0.0
	for _, s := range slices {
		total += s.Value
	}
	if total <= 0 {
		return ""
	}
	html, err := svg.Donut(220, slices, svg.DonutOpts{Title: title})
	if err != nil {
		kit.logger().Warn("render donut chart", slog.String("title", title), slog.Any("error", err))
		return ""
	}
	return html
}

// HarvestStatusSlices splits a harvest summary by status.
func HarvestStatusSlices(s analytics.HarvestSummary) []svg.Slice {
	var out []svg.Slice
	for _, status := range []farm.HarvestStatus{farm.HarvestPending, farm.HarvestReady, farm.HarvestSold} {
		out = append(out, svg.Slice{Label: farm.Label(status), Value: float64(s.ByStatus[status])})
	}
	return out
}

// GradeBars returns the labels and kilograms per grade.
func GradeBars(s analytics.HarvestSummary) ([]string, []float64) {
	grades := []farm.Grade{farm.GradeA, farm.GradeB, farm.GradeC}
	labels := make([]string, len(grades))
	values := make([]float64, len(grades))
	for i, g := range grades {
		labels[i] = "Kualitas " + string(g)
		values[i] = s.ByGrade[g]
	}
	return labels, values
}

// LatestReadings tabulates the n most recent readings.
func LatestReadings(readings []farm.Reading, lookup *Lookup, n int) TableView {
	rows := append([]farm.Reading(nil), readings...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].RecordedAt.After(rows[j].RecordedAt.Time) })
	if len(rows) > n {
		rows = rows[:n]
	}
	table := TableView{
		Title:   "Monitoring terbaru",
		Headers: []string{"Waktu", "Lahan", "Suhu (°C)", "Kelembapan (%)"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.RecordedAt.String(),
			lookup.PlotName(r.PlotID),
			farm.Decimal(r.Temperature.Float()),
			farm.Decimal(r.Humidity.Float()),
		})
	}
	return table
}
