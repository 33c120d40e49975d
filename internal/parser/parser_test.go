package parser

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/starford/gsea-browser/internal/apperr"
)

const header = "term,es,nes,nom p-val,fdr q-val,gene %,lead_genes\n"

func TestParse_Basic(t *testing.T) {
	input := header +
		"PATHWAY_A,0.61,1.8,0.01,0.04,35.5,TP53;BRCA1;EGFR\n" +
		"PATHWAY_B,-0.4,-1.2,0.2,0.3,10,MYC\n"
	recs, err := Parse(strings.NewReader(input), "p/r.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	a := recs[0]
	if a.Term != "PATHWAY_A" || a.ES != 0.61 || a.NES != 1.8 || a.PValue != 0.01 || a.FDR != 0.04 || a.GenePercent != 35.5 {
		t.Errorf("record = %+v", a)
	}
	if a.LeadGeneCount != 3 || strings.Join(a.LeadGenes, "|") != "TP53|BRCA1|EGFR" {
		t.Errorf("lead genes = %v (%d)", a.LeadGenes, a.LeadGeneCount)
	}
	if recs[1].NES != -1.2 {
		t.Errorf("negative NES lost: %v", recs[1].NES)
	}
}

func TestParse_DerivedCountMatchesSplit(t *testing.T) {
	cells := []string{"A", "A;B", "A;B;C;D", "X;;Y", ""}
	var b strings.Builder
	b.WriteString(header)
	for _, c := range cells {
		b.WriteString("T,0,0,0.01,0,0," + c + "\n")
	}
	recs, err := Parse(strings.NewReader(b.String()), "r.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range recs {
		if r.LeadGeneCount != len(r.LeadGenes) {
			t.Errorf("row %d: count %d != len %d", i, r.LeadGeneCount, len(r.LeadGenes))
		}
		if cells[i] != "" && r.LeadGeneCount != len(strings.Split(cells[i], ";")) {
			t.Errorf("row %d: count %d != split length", i, r.LeadGeneCount)
		}
	}
}

func TestParse_EmptyLeadGenes(t *testing.T) {
	recs, err := Parse(strings.NewReader(header+"T,0,0,0.01,0,0,\n"), "r.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].LeadGeneCount != 0 || len(recs[0].LeadGenes) != 0 {
		t.Errorf("expected no genes, got %v", recs[0].LeadGenes)
	}
}

func TestParse_ReorderedAndExtraColumns(t *testing.T) {
	input := "\ufeff lead_genes ,index,term,gene %,fdr q-val,nom p-val,nes,es\n" +
		"A;B,0,T1,12,0.1,0.02,1.5,0.5\n"
	recs, err := Parse(strings.NewReader(input), "r.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := recs[0]
	if r.Term != "T1" || r.PValue != 0.02 || r.ES != 0.5 || r.LeadGeneCount != 2 {
		t.Errorf("record = %+v", r)
	}
}

func TestParse_MissingNumericIsNaN(t *testing.T) {
	recs, err := Parse(strings.NewReader(header+"T,,NaN,,0,,A\n"), "r.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(recs[0].ES) || !math.IsNaN(recs[0].PValue) {
		t.Errorf("expected NaN, got %+v", recs[0])
	}
}

func TestParse_MissingColumn(t *testing.T) {
	input := "term,es,nes,nom p-val,gene %,lead_genes\nT,0,0,0.01,0,A\n"
	_, err := Parse(strings.NewReader(input), "proj/bad.csv")
	var se *apperr.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want SchemaError", err)
	}
	if se.Column != ColFDR || se.Path != "proj/bad.csv" {
		t.Errorf("schema error = %+v", se)
	}
	if !errors.Is(err, apperr.ErrSchema) {
		t.Error("SchemaError should match ErrSchema")
	}
}

func TestParse_InvalidNumber(t *testing.T) {
	_, err := Parse(strings.NewReader(header+"T,abc,0,0.01,0,0,A\n"), "r.csv")
	var pe *apperr.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ParseError", err)
	}
	if pe.Line != 2 {
		t.Errorf("line = %d, want 2", pe.Line)
	}
}

func TestParse_MalformedCSV(t *testing.T) {
	_, err := Parse(strings.NewReader(header+"T,\"unterminated,0,0.01,0,0,A\n"), "r.csv")
	if !errors.Is(err, apperr.ErrParse) {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "r.csv")
	if !errors.Is(err, apperr.ErrParse) {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	recs, err := ParseBytes([]byte(header), "r.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", recs)
	}
}

func TestSplitGenes_PreservesOrder(t *testing.T) {
	got := SplitGenes("EGFR;TP53;AKT1")
	if strings.Join(got, ",") != "EGFR,TP53,AKT1" {
		t.Errorf("genes = %v", got)
	}
}
