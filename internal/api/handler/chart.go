package handler

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/d60-Lab/delivery-admin/internal/service"
)

const (
	chartStroke  = "#36A2EB"
	chartFill    = "rgba(54, 162, 235, 0.2)"
	chartAxis    = "#999"
	maxXLabels   = 10
	maxYTicks    = 5
	chartLegend  = "Number of Orders"
	emptyCaption = "No orders in this range"
)

// renderChart 把折线布局画成 SVG；selected 为当前选中日期，高亮对应的点
func renderChart(l service.ChartLayout, selected string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="11">`,
		l.Width, l.Height, l.Width, l.Height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#fff"/>`, l.Width, l.Height)

	left, right, top, base := l.PlotLeft(), l.PlotRight(), l.PlotTop(), l.Baseline()
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`, left, top, left, base, chartAxis)
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`, left, base, right, base, chartAxis)

	step := int(math.Ceil(float64(l.MaxCount) / maxYTicks))
	if step < 1 {
		step = 1
	}
	for v := 0; v <= l.MaxCount; v += step {
		y := top + (base-top)*(1-float64(v)/float64(l.MaxCount))
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#eee"/>`, left, y, right, y)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="end">%d</text>`, left-6, y+4, v)
	}

	fmt.Fprintf(&b, `<rect x="%.1f" y="6" width="12" height="8" fill="%s" stroke="%s"/>`, right-130, chartFill, chartStroke)
	fmt.Fprintf(&b, `<text x="%.1f" y="14">%s</text>`, right-114, chartLegend)

	if len(l.Points) == 0 {
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" fill="%s">%s</text>`,
			(left+right)/2, (top+base)/2, chartAxis, emptyCaption)
		b.WriteString(`</svg>`)
		return b.Bytes()
	}

	coords := make([]string, 0, len(l.Points))
	for _, p := range l.Points {
		coords = append(coords, fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
	}
	first, last := l.Points[0], l.Points[len(l.Points)-1]
	fmt.Fprintf(&b, `<polygon points="%.1f,%.1f %s %.1f,%.1f" fill="%s"/>`,
		first.X, base, strings.Join(coords, " "), last.X, base, chartFill)
	fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`, strings.Join(coords, " "), chartStroke)

	every := int(math.Ceil(float64(len(l.Points)) / maxXLabels))
	for i, p := range l.Points {
		r, fill := float64(service.PointRadius), "#fff"
		if p.Label == selected {
			r, fill = r+2, chartStroke
		}
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="2"><title>%s: %d</title></circle>`,
			p.X, p.Y, r, fill, chartStroke, html.EscapeString(p.Label), p.Count)
		if i%every == 0 || i == len(l.Points)-1 {
			fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle">%s</text>`, p.X, base+16, html.EscapeString(p.Label))
		}
	}
	b.WriteString(`</svg>`)
	return b.Bytes()
}
