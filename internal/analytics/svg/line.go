package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders a single series as a line with a shaded area.
func Line(width, height int, values []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	f, err := newFrame(width, height, values)
	if err != nil {
		return "", err
	}
	stroke := colorAt(0, opts.StrokeColor)
	fill := opts.FillColor
	if fill == "" {
		fill = "rgba(21,128,61,0.12)"
	}

	x := func(i int) float64 {
		if len(values) == 1 {
			return f.left + f.plotW/2
		}
		return f.left + float64(i)*f.plotW/float64(len(values)-1)
	}

	var path strings.Builder
	for i, v := range values {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.1f %.1f ", cmd, x(i), f.y(v))
	}
	d := strings.TrimSpace(path.String())

	var b strings.Builder
	f.open(&b, "line", orDefault(opts.Title, "Grafik garis"), orDefault(opts.Description, "Tren data"))
	f.grid(&b, opts.TickCount, opts.Unit)
	fmt.Fprintf(&b, `<path d="%s L%.1f %.1f L%.1f %.1f Z" fill="%s" stroke="none" aria-hidden="true"></path>`, d, x(len(values)-1), f.y(0), x(0), f.y(0), fill)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round"></path>`, d, stroke)
	for i, v := range values {
		if opts.ShowDots {
			fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%s: %s</title></circle>`, x(i), f.y(v), stroke, template.HTMLEscapeString(labels[i]), Tick(v))
		}
		f.label(&b, x(i), labels[i])
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
