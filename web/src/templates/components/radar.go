package components

import (
	"math"
	"strconv"
	"strings"

	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

// RadarPoint is one axis of the radar chart.
type RadarPoint struct {
	Subject string
	A       float64
	B       float64
}

// RadarSeries styles the plotted series.
type RadarSeries struct {
	Name        string
	Color       string
	FillOpacity float64
}

// RadarFullMark is the value at the outer ring.
const RadarFullMark = 150

// SampleRadarData is the static, illustrative data set shown on the dashboard.
var SampleRadarData = []RadarPoint{
	{Subject: "Math", A: 120, B: 110},
	{Subject: "English", A: 98, B: 130},
	{Subject: "Science", A: 86, B: 130},
	{Subject: "History", A: 99, B: 100},
	{Subject: "Geography", A: 85, B: 90},
	{Subject: "Art", A: 65, B: 85},
}

// StudentA is the only series plotted.
var StudentA = RadarSeries{Name: "Student A", Color: "#8884d8", FillOpacity: 0.6}

const (
	radarSize   = 300.0
	radarCenter = radarSize / 2
	// The outer ring sits at 80% of the half width.
	radarRadius = radarCenter * 0.8
	radarRings  = 5
)

func svg(name string, children ...cmp.Node) cmp.Node {
	return cmp.El(name, children...)
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// radarVertex returns the position of value on axis i of n. Axis 0 points
// up and the axes run clockwise.
func radarVertex(i, n int, value float64) (float64, float64) {
	angle := math.Pi/2 - 2*math.Pi*float64(i)/float64(n)
	r := radarRadius * value / RadarFullMark
	return radarCenter + r*math.Cos(angle), radarCenter - r*math.Sin(angle)
}

func polygonPoints(n int, value func(i int) float64) string {
	pts := make([]string, n)
	for i := range pts {
		x, y := radarVertex(i, n, value(i))
		pts[i] = f(x) + "," + f(y)
	}
	return strings.Join(pts, " ")
}

// RadarChart draws data as an SVG radar chart: grid rings, spokes, subject
// labels and the series polygon.
func RadarChart(data []RadarPoint, series RadarSeries) cmp.Node {
	n := len(data)
	if n < 3 {
		return g.Div(g.Class("radar-chart text-sm text-gray-500"), cmp.Text("Not enough data"))
	}

	var grid []cmp.Node
	for ring := 1; ring <= radarRings; ring++ {
		level := RadarFullMark * float64(ring) / radarRings
		grid = append(grid, svg("polygon",
			cmp.Attr("points", polygonPoints(n, func(int) float64 { return level })),
			cmp.Attr("fill", "none"),
			cmp.Attr("stroke", "#ccc"),
		))
	}
	for i := range data {
		x, y := radarVertex(i, n, RadarFullMark)
		grid = append(grid, svg("line",
			cmp.Attr("x1", f(radarCenter)), cmp.Attr("y1", f(radarCenter)),
			cmp.Attr("x2", f(x)), cmp.Attr("y2", f(y)),
			cmp.Attr("stroke", "#ccc"),
		))
	}

	labels := make([]cmp.Node, 0, n)
	for i, p := range data {
		x, y := radarVertex(i, n, RadarFullMark*1.12)
		anchor := "middle"
		switch {
		case x > radarCenter+1:
			anchor = "start"
		case x < radarCenter-1:
			anchor = "end"
		}
		labels = append(labels, svg("text",
			cmp.Attr("x", f(x)), cmp.Attr("y", f(y)),
			cmp.Attr("text-anchor", anchor),
			cmp.Attr("dominant-baseline", "middle"),
			cmp.Attr("font-size", "12"),
			cmp.Text(p.Subject),
		))
	}

	return g.Div(
		g.Class("radar-chart w-full"),
		svg("svg",
			cmp.Attr("xmlns", "http://www.w3.org/2000/svg"),
			cmp.Attr("viewBox", "-40 -20 380 340"),
			cmp.Attr("width", "100%"),
			cmp.Attr("height", "300"),
			g.Role("img"),
			g.Aria("label", series.Name+" radar chart"),
			svg("g", cmp.Attr("class", "radar-grid"), cmp.Group(grid)),
			svg("polygon",
				cmp.Attr("class", "radar-series"),
				cmp.Attr("points", polygonPoints(n, func(i int) float64 { return data[i].A })),
				cmp.Attr("stroke", series.Color),
				cmp.Attr("fill", series.Color),
				cmp.Attr("fill-opacity", strconv.FormatFloat(series.FillOpacity, 'f', -1, 64)),
				svg("title", cmp.Text(series.Name)),
			),
			svg("g", cmp.Attr("class", "radar-labels"), cmp.Group(labels)),
		),
	)
}
