// Package parser decodes GSEA result CSV files into enrichment records.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/models"
)

// Source column names.
const (
	ColTerm        = "term"
	ColES          = "es"
	ColNES         = "nes"
	ColPValue      = "nom p-val"
	ColFDR         = "fdr q-val"
	ColGenePercent = "gene %"
	ColLeadGenes   = "lead_genes"
)

// GeneSeparator delimits lead genes within a cell.
const GeneSeparator = ";"

// RequiredColumns lists every column a result file must carry, in source order.
var RequiredColumns = []string{ColTerm, ColES, ColNES, ColPValue, ColFDR, ColGenePercent, ColLeadGenes}

const utf8BOM = "\ufeff"

// Parse reads a result file with a header row. path is only used in errors.
func Parse(r io.Reader, path string) ([]models.EnrichmentRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &apperr.ParseError{Path: path, Err: errors.New("empty file")}
		}
		return nil, parseErr(path, err)
	}
	cols, err := bindColumns(header, path)
	if err != nil {
		return nil, err
	}

	out := []models.EnrichmentRecord{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseErr(path, err)
		}
		line, _ := cr.FieldPos(0)
		rec, err := decodeRow(row, cols)
		if err != nil {
			return nil, &apperr.ParseError{Path: path, Line: line, Err: err}
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseBytes is Parse over an in-memory file.
func ParseBytes(data []byte, path string) ([]models.EnrichmentRecord, error) {
	return Parse(bytes.NewReader(data), path)
}

func parseErr(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &apperr.ParseError{Path: path, Line: pe.Line, Err: pe.Err}
	}
	return &apperr.ParseError{Path: path, Err: err}
}

// bindColumns maps each required column to its index in the header.
// The first occurrence wins when a name repeats.
func bindColumns(header []string, path string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	cols := make(map[string]int, len(RequiredColumns))
	for _, c := range RequiredColumns {
		i, ok := idx[c]
		if !ok {
			return nil, &apperr.SchemaError{Column: c, Path: path}
		}
		cols[c] = i
	}
	return cols, nil
}

func decodeRow(row []string, cols map[string]int) (models.EnrichmentRecord, error) {
	cell := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var rec models.EnrichmentRecord
	rec.Term = cell(ColTerm)

	floats := []struct {
		col string
		dst *float64
	}{
		{ColES, &rec.ES},
		{ColNES, &rec.NES},
		{ColPValue, &rec.PValue},
		{ColFDR, &rec.FDR},
		{ColGenePercent, &rec.GenePercent},
	}
	for _, f := range floats {
		v, err := parseFloat(cell(f.col))
		if err != nil {
			return rec, fmt.Errorf("column %q: %w", f.col, err)
		}
		*f.dst = v
	}

	rec.LeadGenes = SplitGenes(cell(ColLeadGenes))
	rec.LeadGeneCount = len(rec.LeadGenes)
	return rec, nil
}

// parseFloat accepts blank cells and the usual missing-value spellings as NaN.
// A trailing percent sign is tolerated for the gene % column.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null":
		return math.NaN(), nil
	}
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// SplitGenes splits a lead_genes cell on ';' preserving order.
// An empty cell has no genes.
func SplitGenes(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, GeneSeparator)
}
