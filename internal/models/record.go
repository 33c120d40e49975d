// Package models defines the domain types for the GSEA browser.
package models

// Project is a directory of result files under the data root.
type Project struct {
	Name string `json:"name"`
}

// ResultFile is one CSV belonging to a project.
type ResultFile struct {
	Project string `json:"project"`
	Name    string `json:"name"` // display name, extension stripped
	File    string `json:"file"` // file name on disk
}

// EnrichmentRecord is one row of a loaded result file.
// LeadGeneCount is derived from LeadGenes at load time and records are
// never mutated afterwards.
type EnrichmentRecord struct {
	Term          string   `json:"term"`
	ES            float64  `json:"es"`
	NES           float64  `json:"nes"`
	PValue        float64  `json:"p_value"`
	FDR           float64  `json:"fdr"`
	GenePercent   float64  `json:"gene_percent"`
	LeadGenes     []string `json:"lead_genes"`
	LeadGeneCount int      `json:"lead_gene_count"`
}

// HasGene reports whether gene is an exact member of the lead-gene list.
func (r *EnrichmentRecord) HasGene(gene string) bool {
	for _, g := range r.LeadGenes {
		if g == gene {
			return true
		}
	}
	return false
}

// Option is a selectable label/value pair.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
