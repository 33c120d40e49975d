package gsea

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/checksum"
	"github.com/starford/gsea-browser/internal/models"
)

// Column IDs of the results table.
const (
	ColumnTerm      = "term"
	ColumnES        = "es"
	ColumnNES       = "nes"
	ColumnPValue    = "p_value"
	ColumnFDR       = "fdr"
	ColumnGenes     = "gene_percent"
	ColumnLeadGenes = "lead_gene_count"
)

// DefaultPageSize is the number of rows shown per table page.
const DefaultPageSize = 10

// ErrUnknownColumn is returned for a sort key that names no column.
var ErrUnknownColumn = errors.New("unknown column")

// Column describes how one table column is displayed.
// Precision is the number of decimals for numeric columns, -1 for text and counts.
type Column struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Precision int    `json:"precision"`
}

// Columns is the results table layout, in display order.
var Columns = []Column{
	{ID: ColumnTerm, Name: "Term", Precision: -1},
	{ID: ColumnES, Name: "ES", Precision: 3},
	{ID: ColumnNES, Name: "NES", Precision: 3},
	{ID: ColumnPValue, Name: "P-Value", Precision: 3},
	{ID: ColumnFDR, Name: "FDR", Precision: 3},
	{ID: ColumnGenes, Name: "Genes %", Precision: 1},
	{ID: ColumnLeadGenes, Name: "Lead Genes", Precision: -1},
}

// Query is everything that shapes a view of one loaded table.
type Query struct {
	Genes string
	Sort  string
	Desc  bool
}

// View is the filtered, sorted set of records displayed for a query.
// ID fingerprints the source table and the query so a row index taken
// from one view is never applied to another.
type View struct {
	ID      string
	Columns []Column
	Genes   []string
	Records []models.EnrichmentRecord
}

// NewView filters and sorts records. source identifies the loaded table
// (typically project, file and content checksum).
func NewView(source string, records []models.EnrichmentRecord, q Query) (*View, error) {
	genes := ParseGeneQuery(q.Genes)
	filtered := FilterGenes(records, genes)
	if q.Sort != "" {
		key, err := sortKeyFor(q.Sort)
		if err != nil {
			return nil, err
		}
		slices.SortStableFunc(filtered, func(a, b models.EnrichmentRecord) int {
			return key.compare(a, b, q.Desc)
		})
	}
	return &View{
		ID:      checksum.Fingerprint(source, strings.Join(genes, ","), q.Sort, strconv.FormatBool(q.Desc && q.Sort != "")),
		Columns: Columns,
		Genes:   genes,
		Records: filtered,
	}, nil
}

// sortKey orders records by one column. Missing (NaN) values sort last in
// both directions.
type sortKey struct {
	text  func(models.EnrichmentRecord) string
	count func(models.EnrichmentRecord) int
	num   func(models.EnrichmentRecord) float64
}

func (k sortKey) compare(a, b models.EnrichmentRecord, desc bool) int {
	if k.num != nil {
		x, y := k.num(a), k.num(b)
		switch xn, yn := math.IsNaN(x), math.IsNaN(y); {
		case xn && yn:
			return 0
		case xn:
			return 1
		case yn:
			return -1
		}
		if desc {
			return cmp.Compare(y, x)
		}
		return cmp.Compare(x, y)
	}
	var c int
	if k.text != nil {
		c = strings.Compare(k.text(a), k.text(b))
	} else {
		c = cmp.Compare(k.count(a), k.count(b))
	}
	if desc {
		return -c
	}
	return c
}

func sortKeyFor(column string) (sortKey, error) {
	switch column {
	case ColumnTerm:
		return sortKey{text: func(r models.EnrichmentRecord) string { return r.Term }}, nil
	case ColumnES:
		return sortKey{num: func(r models.EnrichmentRecord) float64 { return r.ES }}, nil
	case ColumnNES:
		return sortKey{num: func(r models.EnrichmentRecord) float64 { return r.NES }}, nil
	case ColumnPValue:
		return sortKey{num: func(r models.EnrichmentRecord) float64 { return r.PValue }}, nil
	case ColumnFDR:
		return sortKey{num: func(r models.EnrichmentRecord) float64 { return r.FDR }}, nil
	case ColumnGenes:
		return sortKey{num: func(r models.EnrichmentRecord) float64 { return r.GenePercent }}, nil
	case ColumnLeadGenes:
		return sortKey{count: func(r models.EnrichmentRecord) int { return r.LeadGeneCount }}, nil
	}
	return sortKey{}, fmt.Errorf("gsea: sort by %q: %w", column, ErrUnknownColumn)
}

// ValidColumn reports whether id names a table column.
func ValidColumn(id string) bool {
	_, err := sortKeyFor(id)
	return err == nil
}

// Len returns the number of records in the view.
func (v *View) Len() int {
	return len(v.Records)
}

// Page returns rows [page*size, page*size+size). Pages are 0-based; an
// out-of-range page yields no rows.
func (v *View) Page(page, size int) []Row {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	start := page * size
	if start >= len(v.Records) {
		return []Row{}
	}
	end := min(start+size, len(v.Records))
	out := make([]Row, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, NewRow(i, &v.Records[i]))
	}
	return out
}

// Select returns the record at index, provided viewID names this view.
// A stale view ID or an out-of-range index is ErrNoSelection.
func (v *View) Select(index int, viewID string) (*models.EnrichmentRecord, error) {
	if viewID != v.ID {
		return nil, fmt.Errorf("gsea: view %s is stale: %w", viewID, apperr.ErrNoSelection)
	}
	if index < 0 || index >= len(v.Records) {
		return nil, fmt.Errorf("gsea: row %d out of range: %w", index, apperr.ErrNoSelection)
	}
	return &v.Records[index], nil
}

// Row is one record as shown in the table. Missing values are null.
type Row struct {
	Index         int      `json:"index"`
	Term          string   `json:"term"`
	ES            *float64 `json:"es"`
	NES           *float64 `json:"nes"`
	PValue        *float64 `json:"p_value"`
	FDR           *float64 `json:"fdr"`
	GenePercent   *float64 `json:"gene_percent"`
	LeadGeneCount int      `json:"lead_gene_count"`
	LeadGenes     []string `json:"lead_genes"`
}

// NewRow converts the record at view position index.
func NewRow(index int, r *models.EnrichmentRecord) Row {
	return Row{
		Index:         index,
		Term:          r.Term,
		ES:            Finite(r.ES),
		NES:           Finite(r.NES),
		PValue:        Finite(r.PValue),
		FDR:           Finite(r.FDR),
		GenePercent:   Finite(r.GenePercent),
		LeadGeneCount: r.LeadGeneCount,
		LeadGenes:     r.LeadGenes,
	}
}

// Finite returns nil for NaN and infinities, so missing values encode as null.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
