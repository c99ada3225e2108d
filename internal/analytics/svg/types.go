// Package svg renders small accessible SVG charts for the dashboards.
package svg

// Series is one named set of values on a shared label axis.
type Series struct {
	Label  string
	Values []float64
	Color  string
}

// Slice is one segment of a donut chart.
type Slice struct {
	Label string
	Value float64
	Color string
}

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	Unit        string
	ShowDots    bool
	TickCount   int
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	Unit        string
	TickCount   int
}

// DonutOpts customises the donut renderer.
type DonutOpts struct {
	Title       string
	Description string
	Thickness   float64
}

// Chart defaults.
const (
	DefaultWidth   = 640
	DefaultHeight  = 240
	DefaultPadding = 32.0
	DefaultTicks   = 4
)

const (
	axisColor = "#64748b"
	gridColor = "#d9e3d4"
)

// Palette is cycled for series and slices without a colour.
var Palette = []string{"#15803d", "#ca8a04", "#0369a1", "#b91c1c", "#7c3aed", "#0f766e"}

func colorAt(i int, preferred string) string {
	if preferred != "" {
		return preferred
	}
	return Palette[i%len(Palette)]
}
