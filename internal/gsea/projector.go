package gsea

import (
	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/models"
)

// Point places one lead gene on the chart axis.
type Point struct {
	Position int    `json:"position"`
	Gene     string `json:"gene"`
}

// Layout is the positional data shared by every lead-gene chart.
type Layout []Point

// Genes returns the gene symbols in layout order.
func (l Layout) Genes() []string {
	out := make([]string, len(l))
	for i, p := range l {
		out[i] = p.Gene
	}
	return out
}

// Positions returns the x coordinates in layout order.
func (l Layout) Positions() []int {
	out := make([]int, len(l))
	for i, p := range l {
		out[i] = p.Position
	}
	return out
}

// Project lays out the lead genes of the selected record at positions
// 0..n-1 in stored order. A record without lead genes yields an empty layout.
func Project(r *models.EnrichmentRecord) (Layout, error) {
	if r == nil {
		return nil, apperr.ErrNoSelection
	}
	out := make(Layout, len(r.LeadGenes))
	for i, g := range r.LeadGenes {
		out[i] = Point{Position: i, Gene: g}
	}
	return out, nil
}
