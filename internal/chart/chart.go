// Package chart builds plotly.js figure specs for the lead-gene charts.
// All three figures plot the same layout: every gene at y = 1, spread
// along x by its position. The position is a spacing device only.
package chart

import (
	"fmt"

	"github.com/starford/gsea-browser/internal/gsea"
)

// Palette used by the dashboard and the figures.
const (
	ColorText    = "#2c3e50"
	ColorPrimary = "#3498db"
	ColorGrid    = "#e1e1e1"
)

// Kind names one of the lead-gene charts.
type Kind string

const (
	KindScatter Kind = "scatter"
	KindStrip   Kind = "strip"
	KindDot     Kind = "dot"
)

// Kinds lists the charts in display order.
var Kinds = []Kind{KindScatter, KindStrip, KindDot}

// Figure is a plotly.js figure: data traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is the subset of plotly trace attributes the charts use.
type Trace struct {
	Type         string   `json:"type"`
	Mode         string   `json:"mode,omitempty"`
	Name         string   `json:"name"`
	X            []int    `json:"x,omitempty"`
	Y            []int    `json:"y"`
	Text         []string `json:"text"`
	TextPosition string   `json:"textposition,omitempty"`
	HoverInfo    string   `json:"hoverinfo"`
	BoxPoints    string   `json:"boxpoints,omitempty"`
	Jitter       *float64 `json:"jitter,omitempty"`
	PointPos     *float64 `json:"pointpos,omitempty"`
	Marker       Marker   `json:"marker"`
}

// Marker styles trace points.
type Marker struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// Layout is the subset of plotly layout attributes the charts use.
type Layout struct {
	Title        Title  `json:"title"`
	ShowLegend   bool   `json:"showlegend"`
	PaperBGColor string `json:"paper_bgcolor"`
	PlotBGColor  string `json:"plot_bgcolor"`
	Font         Font   `json:"font"`
	XAxis        Axis   `json:"xaxis"`
	YAxis        Axis   `json:"yaxis"`
}

// Title is a figure title.
type Title struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

// Font sets text colour.
type Font struct {
	Color string `json:"color"`
}

// Axis sets grid colour.
type Axis struct {
	GridColor string `json:"gridcolor"`
}

const traceName = "Lead Genes"

// Build returns the figure of kind for a term's lead-gene layout.
func Build(kind Kind, term string, layout gsea.Layout) (Figure, error) {
	switch kind {
	case KindScatter:
		return figure(fmt.Sprintf("Lead Genes Distribution - %s", term), markerTrace(layout)), nil
	case KindStrip:
		return figure(fmt.Sprintf("Lead Genes Distribution (Strip Plot) - %s", term), stripTrace(layout)), nil
	case KindDot:
		return figure(fmt.Sprintf("Lead Genes Distribution (Dot Plot) - %s", term), markerTrace(layout)), nil
	}
	return Figure{}, fmt.Errorf("chart: unknown kind %q", kind)
}

// BuildAll returns every chart kind, keyed by kind.
func BuildAll(term string, layout gsea.Layout) map[Kind]Figure {
	out := make(map[Kind]Figure, len(Kinds))
	for _, k := range Kinds {
		fig, _ := Build(k, term, layout)
		out[k] = fig
	}
	return out
}

// Empty returns a figure with no traces for each kind, used when nothing is selected.
func Empty() map[Kind]Figure {
	out := make(map[Kind]Figure, len(Kinds))
	for _, k := range Kinds {
		out[k] = Figure{Data: []Trace{}, Layout: baseLayout("")}
	}
	return out
}

func ones(n int) []int {
	y := make([]int, n)
	for i := range y {
		y[i] = 1
	}
	return y
}

func markerTrace(layout gsea.Layout) Trace {
	return Trace{
		Type:         "scatter",
		Mode:         "markers+text",
		Name:         traceName,
		X:            layout.Positions(),
		Y:            ones(len(layout)),
		Text:         layout.Genes(),
		TextPosition: "top center",
		HoverInfo:    "text",
		Marker:       Marker{Color: ColorPrimary, Size: 10},
	}
}

func stripTrace(layout gsea.Layout) Trace {
	jitter, pointPos := 0.3, -1.8
	return Trace{
		Type:      "box",
		Name:      traceName,
		Y:         ones(len(layout)),
		Text:      layout.Genes(),
		HoverInfo: "text",
		BoxPoints: "all",
		Jitter:    &jitter,
		PointPos:  &pointPos,
		Marker:    Marker{Color: ColorPrimary, Size: 8},
	}
}

func figure(title string, t Trace) Figure {
	return Figure{Data: []Trace{t}, Layout: baseLayout(title)}
}

func baseLayout(title string) Layout {
	return Layout{
		Title:        Title{Text: title, Font: Font{Color: ColorText}},
		ShowLegend:   false,
		PaperBGColor: "rgba(0,0,0,0)",
		PlotBGColor:  "rgba(0,0,0,0)",
		Font:         Font{Color: ColorText},
		XAxis:        Axis{GridColor: ColorGrid},
		YAxis:        Axis{GridColor: ColorGrid},
	}
}
