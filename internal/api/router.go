// Package api implements the GSEA browser REST API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/gsea-browser/internal/catalog"
	"github.com/starford/gsea-browser/internal/index"
	"github.com/starford/gsea-browser/internal/pipeline"
)

// NewRouter creates a chi router with all API routes mounted.
// idx may be nil when the catalog index is disabled; the gene and status
// routes then answer 503. sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(pl *pipeline.Pipeline, cat catalog.Provider, idx index.GeneIndex, sseHandler http.Handler) chi.Router {
	h := NewHandler(pl, idx)
	rh := NewRawHandler(cat)

	r := chi.NewRouter()

	// Discovery.
	r.Get("/projects", h.ListProjects)
	r.Get("/projects/{project}/files", h.ListFiles)

	// Tables and charts.
	r.Route("/projects/{project}/files/{file}", func(r chi.Router) {
		r.Get("/terms", h.Terms)
		r.Get("/terms/{row}/charts", h.Charts)
		r.Get("/raw", rh.ServeFile)
	})

	// Dashboard event dispatcher.
	r.Post("/dispatch", h.Dispatch)

	// Catalog index.
	r.Get("/genes/{gene}", h.FindGene)
	r.Get("/index/status", h.IndexStatus)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
