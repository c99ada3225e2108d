package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Donut renders shares of a whole, such as harvests per status. Slices with
// a non-positive value are skipped.
func Donut(size int, slices []Slice, opts DonutOpts) (template.HTML, error) {
	total := 0.0
	for _, s := range slices {
		if s.Value > 0 {
			total += s.Value
		}
	}
	if total == 0 {
		return "", fmt.Errorf("svg: donut needs a positive total")
	}
	if size <= 0 {
		size = DefaultHeight
	}
	thickness := opts.Thickness
	if thickness <= 0 {
		thickness = float64(size) / 6
	}
	center := float64(size) / 2
	radius := center - thickness/2 - 2
	circumference := 2 * math.Pi * radius

	titleID := chartID(opts.Title, "donut-title")
	descID := chartID(opts.Title, "donut-desc")

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, size, size, titleID, descID)
	fmt.Fprintf(&b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(orDefault(opts.Title, "Komposisi")))
	fmt.Fprintf(&b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(orDefault(opts.Description, "Proporsi tiap kategori")))

	offset := 0.0
	for i, s := range slices {
		if s.Value <= 0 {
			continue
		}
		length := s.Value / total * circumference
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="%.1f" stroke-dasharray="%.2f %.2f" stroke-dashoffset="%.2f" transform="rotate(-90 %.1f %.1f)"><title>%s: %.0f%%</title></circle>`,
			center, center, radius, colorAt(i, s.Color), thickness, length, circumference-length, -offset, center, center,
			template.HTMLEscapeString(s.Label), s.Value/total*100)
		offset += length
	}
	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="14" text-anchor="middle" fill="%s">%s</text>`, center, center+5, axisColor, Tick(total))
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
