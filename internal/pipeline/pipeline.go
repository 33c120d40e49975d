// Package pipeline is the boundary the HTTP and MCP surfaces call into:
// discovery, loading, filtering and projection of GSEA result tables.
package pipeline

import (
	"context"
	"fmt"

	"github.com/starford/gsea-browser/internal/catalog"
	"github.com/starford/gsea-browser/internal/chart"
	"github.com/starford/gsea-browser/internal/checksum"
	"github.com/starford/gsea-browser/internal/gsea"
	"github.com/starford/gsea-browser/internal/models"
	"github.com/starford/gsea-browser/internal/parser"
)

// Table is one loaded result file.
type Table struct {
	Project  string
	File     string
	Checksum string
	Records  []models.EnrichmentRecord
}

// Source identifies the table content for view fingerprints.
func (t *Table) Source() string {
	return t.Project + "/" + t.File + "@" + t.Checksum
}

// TermsPage is one page of a filtered, sorted table.
type TermsPage struct {
	ViewID   string        `json:"view_id"`
	Columns  []gsea.Column `json:"columns"`
	Genes    []string      `json:"genes"`
	Rows     []gsea.Row    `json:"rows"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Pages    int           `json:"pages"`
}

// Selection is the chart data for one selected row. Stale is set when the
// row no longer belongs to the current view; the figures are then empty.
type Selection struct {
	Row     *gsea.Row                   `json:"row,omitempty"`
	Layout  gsea.Layout                 `json:"layout"`
	Figures map[chart.Kind]chart.Figure `json:"figures"`
	Stale   bool                        `json:"stale"`
}

// Pipeline reads result files through a catalog. It holds no mutable state.
type Pipeline struct {
	cat      catalog.Provider
	pageSize int
}

// New creates a pipeline. pageSize <= 0 selects gsea.DefaultPageSize.
func New(cat catalog.Provider, pageSize int) *Pipeline {
	if pageSize <= 0 {
		pageSize = gsea.DefaultPageSize
	}
	return &Pipeline{cat: cat, pageSize: pageSize}
}

// PageSize returns the configured rows per page.
func (p *Pipeline) PageSize() int {
	return p.pageSize
}

// Projects lists the projects under the data root as selector options.
func (p *Pipeline) Projects(ctx context.Context) ([]models.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	projects, err := p.cat.Projects()
	if err != nil {
		return nil, fmt.Errorf("pipeline: projects: %w", err)
	}
	out := make([]models.Option, 0, len(projects))
	for _, pr := range projects {
		out = append(out, models.Option{Label: pr.Name, Value: pr.Name})
	}
	return out, nil
}

// ResultFiles lists a project's result files as selector options. The label
// is the display name, the value the file name on disk.
func (p *Pipeline) ResultFiles(ctx context.Context, project string) ([]models.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := p.cat.ResultFiles(project)
	if err != nil {
		return nil, fmt.Errorf("pipeline: result files: %w", err)
	}
	out := make([]models.Option, 0, len(files))
	for _, f := range files {
		out = append(out, models.Option{Label: f.Name, Value: f.File})
	}
	return out, nil
}

// LoadTable reads and parses one result file.
func (p *Pipeline) LoadTable(ctx context.Context, project, file string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := p.cat.Read(project, file)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load: %w", err)
	}
	records, err := parser.ParseBytes(data, project+"/"+file)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load: %w", err)
	}
	return &Table{
		Project:  project,
		File:     file,
		Checksum: checksum.Sum(data),
		Records:  records,
	}, nil
}

// FilterTable applies the significance gate and the gene query.
func FilterTable(records []models.EnrichmentRecord, query string) []models.EnrichmentRecord {
	return gsea.Filter(records, query)
}

// ProjectSelection lays out the lead genes of the selected record.
func ProjectSelection(record *models.EnrichmentRecord) (gsea.Layout, error) {
	return gsea.Project(record)
}

// View loads a table and builds the filtered, sorted view for q.
func (p *Pipeline) View(ctx context.Context, project, file string, q gsea.Query) (*gsea.View, error) {
	t, err := p.LoadTable(ctx, project, file)
	if err != nil {
		return nil, err
	}
	v, err := gsea.NewView(t.Source(), t.Records, q)
	if err != nil {
		return nil, fmt.Errorf("pipeline: view: %w", err)
	}
	return v, nil
}

// Terms returns one page of the view. Out-of-range pages are clamped to the
// last page.
func (p *Pipeline) Terms(ctx context.Context, project, file string, q gsea.Query, page, size int) (*TermsPage, error) {
	v, err := p.View(ctx, project, file, q)
	if err != nil {
		return nil, err
	}
	return paginate(v, page, size, p.pageSize), nil
}

func paginate(v *gsea.View, page, size, fallback int) *TermsPage {
	if size <= 0 {
		size = fallback
	}
	pages := pageCount(v.Len(), size)
	page = clampPage(page, pages)
	return &TermsPage{
		ViewID:   v.ID,
		Columns:  v.Columns,
		Genes:    nonNil(v.Genes),
		Rows:     v.Page(page, size),
		Total:    v.Len(),
		Page:     page,
		PageSize: size,
		Pages:    pages,
	}
}

// Select projects the row at index of the view for q. A stale view ID or
// an out-of-range row yields an empty, stale selection rather than an error.
func (p *Pipeline) Select(ctx context.Context, project, file string, q gsea.Query, index int, viewID string) (*Selection, error) {
	v, err := p.View(ctx, project, file, q)
	if err != nil {
		return nil, err
	}
	return selectRow(v, index, viewID)
}

func selectRow(v *gsea.View, index int, viewID string) (*Selection, error) {
	rec, err := v.Select(index, viewID)
	if err != nil {
		return emptySelection(true), nil
	}
	layout, err := ProjectSelection(rec)
	if err != nil {
		return nil, err
	}
	row := gsea.NewRow(index, rec)
	return &Selection{
		Row:     &row,
		Layout:  layout,
		Figures: chart.BuildAll(rec.Term, layout),
	}, nil
}

func emptySelection(stale bool) *Selection {
	return &Selection{Layout: gsea.Layout{}, Figures: chart.Empty(), Stale: stale}
}

func pageCount(total, size int) int {
	if total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

func clampPage(page, pages int) int {
	if page < 0 {
		return 0
	}
	if page >= pages {
		return pages - 1
	}
	return page
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
