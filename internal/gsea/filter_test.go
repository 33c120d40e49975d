package gsea

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/gsea-browser/internal/models"
	"github.com/starford/gsea-browser/internal/parser"
)

func rec(term string, p float64, genes string) models.EnrichmentRecord {
	g := parser.SplitGenes(genes)
	return models.EnrichmentRecord{Term: term, PValue: p, LeadGenes: g, LeadGeneCount: len(g)}
}

func terms(records []models.EnrichmentRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Term
	}
	return out
}

func sample() []models.EnrichmentRecord {
	return []models.EnrichmentRecord{
		rec("PATHWAY_A", 0.01, "TP53;BRCA1;EGFR"),
		rec("PATHWAY_B", 0.2, "TP53;MYC"),
		rec("PATHWAY_C", 0.05, "MYC;KRAS"),
		rec("PATHWAY_D", 0.03, ""),
		rec("PATHWAY_E", math.NaN(), "TP53"),
		rec("PATHWAY_F", 0.049, "tp53;AKT1"),
	}
}

func TestParseGeneQuery(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{", ,", nil},
		{"TP53", []string{"TP53"}},
		{"TP53, MYC", []string{"TP53", "MYC"}},
		{" ,TP53,MYC, ", []string{"TP53", "MYC"}},
		{"TP53,,MYC", []string{"TP53", "MYC"}},
		{"TP53 ,  MYC", []string{"TP53", "MYC"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseGeneQuery(c.in), "query %q", c.in)
	}
}

func TestFilter_ConcreteScenario(t *testing.T) {
	rows := []models.EnrichmentRecord{rec("PATHWAY_A", 0.01, "TP53;BRCA1;EGFR")}
	require.Equal(t, 3, rows[0].LeadGeneCount)

	assert.Equal(t, []string{"PATHWAY_A"}, terms(Filter(rows, "TP53")))
	assert.Empty(t, Filter(rows, "MYC"))
}

func TestFilter_SignificanceGate(t *testing.T) {
	got := terms(Filter(sample(), ""))
	assert.Equal(t, []string{"PATHWAY_A", "PATHWAY_C", "PATHWAY_D", "PATHWAY_F"}, got)

	// p = 0.2 never passes, whatever the query.
	for _, q := range []string{"", "TP53", "MYC", "TP53, MYC"} {
		assert.NotContains(t, terms(Filter(sample(), q)), "PATHWAY_B", "query %q", q)
	}
}

func TestFilter_ORSemantics(t *testing.T) {
	got := terms(Filter(sample(), "TP53, MYC"))
	assert.Equal(t, []string{"PATHWAY_A", "PATHWAY_C"}, got)
}

func TestFilter_ExactCaseSensitiveMembership(t *testing.T) {
	assert.Equal(t, []string{"PATHWAY_F"}, terms(Filter(sample(), "tp53")))
	assert.Empty(t, Filter(sample(), "TP5"))
	assert.Empty(t, Filter(sample(), "BRCA"))
}

func TestFilter_EmptyLeadGenesNeverMatch(t *testing.T) {
	for _, q := range []string{"TP53", "MYC", "X"} {
		assert.NotContains(t, terms(Filter(sample(), q)), "PATHWAY_D")
	}
}

func TestFilter_Monotonic(t *testing.T) {
	all := map[string]bool{}
	for _, term := range terms(Filter(sample(), "")) {
		all[term] = true
	}
	for _, q := range []string{"TP53", "MYC", "EGFR, KRAS", "AKT1", "NOPE"} {
		for _, term := range terms(Filter(sample(), q)) {
			assert.True(t, all[term], "query %q added %s", q, term)
		}
	}
}

func TestSignificantOnly_Idempotent(t *testing.T) {
	once := SignificantOnly(sample())
	twice := SignificantOnly(once)
	assert.Equal(t, terms(once), terms(twice))
}

func TestFilter_PreservesOrder(t *testing.T) {
	records := []models.EnrichmentRecord{
		rec("Z", 0.01, "A"),
		rec("M", 0.5, "A"),
		rec("B", 0.02, "A;B"),
		rec("Q", 0.04, "B"),
		rec("A", 0.001, "A"),
	}
	assert.Equal(t, []string{"Z", "B", "A"}, terms(Filter(records, "A")))
	assert.Equal(t, []string{"Z", "B", "Q", "A"}, terms(Filter(records, "")))
}

func TestFilter_NothingSignificant(t *testing.T) {
	got := Filter([]models.EnrichmentRecord{rec("X", 0.9, "A")}, "")
	require.NotNil(t, got)
	assert.Empty(t, got)
}
