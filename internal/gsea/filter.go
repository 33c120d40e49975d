// Package gsea implements the term filter, the result view and the
// lead-gene projector over loaded enrichment records.
package gsea

import (
	"strings"

	"github.com/starford/gsea-browser/internal/models"
)

// SignificanceThreshold is the fixed nominal p-value cut-off.
const SignificanceThreshold = 0.05

// querySeparators are stripped from both ends of a gene query.
const querySeparators = ", \t\r\n"

// ParseGeneQuery splits a comma-separated gene query into symbols.
// "TP53, MYC," yields [TP53 MYC]; a blank query yields nil.
func ParseGeneQuery(q string) []string {
	q = strings.Trim(q, querySeparators)
	if q == "" {
		return nil
	}
	var genes []string
	for _, part := range strings.Split(q, ",") {
		if g := strings.TrimSpace(part); g != "" {
			genes = append(genes, g)
		}
	}
	return genes
}

// Significant reports whether r passes the p-value gate. NaN never passes.
func Significant(r *models.EnrichmentRecord) bool {
	return r.PValue <= SignificanceThreshold
}

// SignificantOnly applies the p-value gate alone.
func SignificantOnly(records []models.EnrichmentRecord) []models.EnrichmentRecord {
	out := make([]models.EnrichmentRecord, 0, len(records))
	for i := range records {
		if Significant(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// MatchesAny reports whether any of genes is an exact member of r's lead genes.
// An empty gene list matches everything.
func MatchesAny(r *models.EnrichmentRecord, genes []string) bool {
	if len(genes) == 0 {
		return true
	}
	for _, g := range genes {
		if r.HasGene(g) {
			return true
		}
	}
	return false
}

// Filter keeps significant records that contain any gene of query.
// Survivors keep their input order.
func Filter(records []models.EnrichmentRecord, query string) []models.EnrichmentRecord {
	return FilterGenes(records, ParseGeneQuery(query))
}

// FilterGenes is Filter over an already parsed gene list.
func FilterGenes(records []models.EnrichmentRecord, genes []string) []models.EnrichmentRecord {
	out := make([]models.EnrichmentRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		if Significant(r) && MatchesAny(r, genes) {
			out = append(out, *r)
		}
	}
	return out
}
