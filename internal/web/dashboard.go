// Package web serves the single-page results dashboard.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/starford/gsea-browser/internal/chart"
	"github.com/starford/gsea-browser/internal/gsea"
)

// PlotlyURL is the plotly.js bundle the page loads.
const PlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// GeneInputDelay is how long the gene box waits after the last keystroke
// before filtering.
const GeneInputDelay = 300 * time.Millisecond

var (
	dashTmplOnce sync.Once
	dashTmpl     *template.Template
)

func compile() *template.Template {
	dashTmplOnce.Do(func() {
		dashTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
			"json": func(v any) template.JS {
				b, _ := json.Marshal(v)
				return template.JS(b) //nolint:gosec // server-side constants only
			},
		}).Parse(dashboardTemplate))
	})
	return dashTmpl
}

// pageData holds all template data for the dashboard.
type pageData struct {
	Title     string
	APIBase   string
	PlotlyURL string
	Columns   []gsea.Column
	Kinds     []chart.Kind
	Threshold float64
	GeneDelay int64 // milliseconds
	Palette   palette
}

type palette struct {
	Text   string `json:"text"`
	Accent string `json:"accent"`
	Grid   string `json:"grid"`
}

// Render writes the dashboard page to the buffer.
func Render(buf *bytes.Buffer, title, apiBase string) error {
	data := pageData{
		Title:     title,
		APIBase:   apiBase,
		PlotlyURL: PlotlyURL,
		Columns:   gsea.Columns,
		Kinds:     chart.Kinds,
		Threshold: gsea.SignificanceThreshold,
		GeneDelay: GeneInputDelay.Milliseconds(),
		Palette:   palette{Text: chart.ColorText, Accent: chart.ColorPrimary, Grid: chart.ColorGrid},
	}
	if err := compile().Execute(buf, data); err != nil {
		return fmt.Errorf("web: execute dashboard template: %w", err)
	}
	return nil
}

// Handler serves the dashboard. apiBase is where the JSON API is mounted.
func Handler(title, apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		if err := Render(&buf, title, apiBase); err != nil {
			slog.Error("dashboard render failed", slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(buf.Bytes())
	}
}
