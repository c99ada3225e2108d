package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders grouped bars, one group per label and one bar per series.
func Bars(width, height int, labels []string, series []Series, opts BarOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: at least one series required")
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	var all []float64
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("svg: series %q length must match labels", s.Label)
		}
		all = append(all, s.Values...)
	}
	f, err := newFrame(width, height, all)
	if err != nil {
		return "", err
	}

	group := f.plotW / float64(len(labels))
	bar := group * 0.7 / float64(len(series))

	var b strings.Builder
	f.open(&b, "bar", orDefault(opts.Title, "Grafik batang"), orDefault(opts.Description, "Perbandingan per periode"))
	f.grid(&b, opts.TickCount, opts.Unit)
	zero := f.y(0)
	for i, label := range labels {
		start := f.left + float64(i)*group + group*0.15
		for j, s := range series {
			v := s.Values[i]
			top, h := f.y(v), zero-f.y(v)
			if h < 0 {
				top, h = zero, -h
			}
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s %s: %s</title></rect>`,
				start+float64(j)*bar, top, bar, h, colorAt(j, s.Color),
				template.HTMLEscapeString(s.Label), template.HTMLEscapeString(label), Tick(v))
		}
		f.label(&b, f.left+float64(i)*group+group/2, label)
	}
	if len(series) > 1 {
		legendX := f.left
		for j, s := range series {
			fmt.Fprintf(&b, `<rect x="%.1f" y="8" width="10" height="10" fill="%s"></rect>`, legendX, colorAt(j, s.Color))
			fmt.Fprintf(&b, `<text x="%.1f" y="17" fill="%s" font-size="10">%s</text>`, legendX+14, axisColor, template.HTMLEscapeString(s.Label))
			legendX += 24 + float64(len(s.Label))*6
		}
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
