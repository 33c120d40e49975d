package api

import (
	"time"

	"github.com/starford/gsea-browser/internal/gsea"
	"github.com/starford/gsea-browser/internal/index"
	"github.com/starford/gsea-browser/internal/models"
	"github.com/starford/gsea-browser/internal/pipeline"
)

// OptionsResponse wraps selector options.
type OptionsResponse struct {
	Options []models.Option `json:"options" validate:"required"`
}

// DispatchRequest is the request body of POST /api/dispatch.
type DispatchRequest struct {
	State pipeline.State `json:"state"`
	Event pipeline.Event `json:"event" validate:"required"`
}

// GeneHit is one cross-file lead-gene match. Missing values are null.
// FileRow is the record's position in the raw file. It is not a row index
// of a filtered view and cannot be passed to the charts route.
type GeneHit struct {
	Project string   `json:"project" example:"liver" validate:"required"`
	File    string   `json:"file" example:"run1.csv" validate:"required"`
	FileRow int      `json:"file_row" example:"0"`
	Term    string   `json:"term" example:"HALLMARK_APOPTOSIS" validate:"required"`
	PValue  *float64 `json:"p_value"`
	NES     *float64 `json:"nes"`
	FDR     *float64 `json:"fdr"`
}

// GeneResponse wraps a gene lookup.
type GeneResponse struct {
	Gene string    `json:"gene" example:"TP53" validate:"required"`
	Hits []GeneHit `json:"hits" validate:"required"`
}

// ResultStatus is the load status of one result file.
type ResultStatus struct {
	Project     string    `json:"project" validate:"required"`
	File        string    `json:"file" validate:"required"`
	Status      string    `json:"status" example:"ok" validate:"required"`
	Error       string    `json:"error,omitempty"`
	Terms       int       `json:"terms"`
	Significant int       `json:"significant"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// IndexStatusResponse wraps the catalog index status.
type IndexStatusResponse struct {
	Files  []ResultStatus `json:"files" validate:"required"`
	Failed int            `json:"failed"`
}

func toGeneHits(hits []index.GeneHit) []GeneHit {
	out := make([]GeneHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, GeneHit{
			Project: h.Project,
			File:    h.File,
			FileRow: h.FileRow,
			Term:    h.Term,
			PValue:  gsea.Finite(h.PValue),
			NES:     gsea.Finite(h.NES),
			FDR:     gsea.Finite(h.FDR),
		})
	}
	return out
}

func toIndexStatus(rows []index.ResultRow) IndexStatusResponse {
	resp := IndexStatusResponse{Files: make([]ResultStatus, 0, len(rows))}
	for _, r := range rows {
		if r.Status == index.StatusError {
			resp.Failed++
		}
		resp.Files = append(resp.Files, ResultStatus{
			Project:     r.Project,
			File:        r.File,
			Status:      r.Status,
			Error:       r.Error,
			Terms:       r.Terms,
			Significant: r.Significant,
			IndexedAt:   r.IndexedAt,
		})
	}
	return resp
}
