package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// frame is the plotting area shared by the cartesian charts.
type frame struct {
	width, height int
	left, top     float64
	plotW, plotH  float64
	min, max      float64
}

func newFrame(width, height int, values []float64) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	f := frame{
		width:  width,
		height: height,
		left:   DefaultPadding + 16,
		top:    DefaultPadding,
	}
	f.plotW = float64(width) - f.left - DefaultPadding
	f.plotH = float64(height) - 2*DefaultPadding
	if f.plotW <= 0 || f.plotH <= 0 {
		return frame{}, fmt.Errorf("svg: viewport too small")
	}
	for _, v := range values {
		f.min = math.Min(f.min, v)
		f.max = math.Max(f.max, v)
	}
	if math.Abs(f.max-f.min) < 1e-9 {
		f.max = f.min + 1
	}
	return f, nil
}

func (f frame) bottom() float64 { return f.top + f.plotH }

func (f frame) y(v float64) float64 {
	return f.bottom() - (v-f.min)/(f.max-f.min)*f.plotH
}

func (f frame) open(b *strings.Builder, kind, title, desc string) {
	titleID := chartID(title, kind+"-title")
	descID := chartID(title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, f.width, f.height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(title))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(desc))
}

func (f frame) grid(b *strings.Builder, ticks int, unit string) {
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	right := f.left + f.plotW
	for i := 0; i <= ticks; i++ {
		v := f.min + (f.max-f.min)*float64(i)/float64(ticks)
		y := f.y(v)
		fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="0.5" aria-hidden="true"></line>`, f.left, y, right, y, gridColor)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" fill="%s" font-size="10" text-anchor="end">%s</text>`, f.left-6, y+3, axisColor, template.HTMLEscapeString(Tick(v)+unit))
	}
	zero := f.y(0)
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"></line>`, f.left, zero, right, zero, axisColor)
}

func (f frame) label(b *strings.Builder, x float64, text string) {
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x, f.bottom()+16, axisColor, template.HTMLEscapeString(text))
}

// Tick abbreviates a value using Indonesian magnitude suffixes.
func Tick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return trim(v/1e9) + "M"
	case abs >= 1e6:
		return trim(v/1e6) + "jt"
	case abs >= 1e3:
		return trim(v/1e3) + "rb"
	default:
		return trim(v)
	}
}

func trim(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimSuffix(s, ".0")
	return strings.Replace(s, ".", ",", 1)
}

func chartID(title, suffix string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "chart"
	}
	return base + "-" + suffix
}
