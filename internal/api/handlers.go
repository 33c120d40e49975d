package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/gsea-browser/internal/gsea"
	"github.com/starford/gsea-browser/internal/index"
	"github.com/starford/gsea-browser/internal/pipeline"
)

const (
	maxDispatchBytes = 64 << 10
	defaultGeneLimit = 200
)

// Handler holds API route handlers.
type Handler struct {
	pl  *pipeline.Pipeline
	idx index.GeneIndex
}

// NewHandler creates a new Handler. idx may be nil.
func NewHandler(pl *pipeline.Pipeline, idx index.GeneIndex) *Handler {
	return &Handler{pl: pl, idx: idx}
}

// query reads the gene query and sort order shared by the table routes.
func query(r *http.Request) gsea.Query {
	q := r.URL.Query()
	desc, _ := strconv.ParseBool(q.Get("desc"))
	return gsea.Query{Genes: q.Get("genes"), Sort: q.Get("sort"), Desc: desc}
}

// ListProjects handles GET /api/projects.
//
//	@Summary		List projects under the data root
//	@Tags			projects
//	@Produce		json
//	@Success		200	{object}	OptionsResponse
//	@Failure		404	{object}	errResponse
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	opts, err := h.pl.Projects(r.Context())
	if err != nil {
		writeError(w, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, OptionsResponse{Options: opts})
}

// ListFiles handles GET /api/projects/{project}/files.
//
//	@Summary		List the result files of a project
//	@Tags			projects
//	@Produce		json
//	@Param			project	path		string	true	"Project"
//	@Success		200		{object}	OptionsResponse
//	@Failure		404		{object}	errResponse
//	@Router			/projects/{project}/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	opts, err := h.pl.ResultFiles(r.Context(), chi.URLParam(r, "project"))
	if err != nil {
		writeError(w, "list files", err)
		return
	}
	writeJSON(w, http.StatusOK, OptionsResponse{Options: opts})
}

// Terms handles GET /api/projects/{project}/files/{file}/terms.
//
//	@Summary		Filtered, sorted page of enrichment terms
//	@Tags			terms
//	@Produce		json
//	@Param			project		path		string	true	"Project"
//	@Param			file		path		string	true	"Result file name"
//	@Param			genes		query		string	false	"Comma-separated gene symbols"
//	@Param			sort		query		string	false	"Sort column"	Enums(term, es, nes, p_value, fdr, gene_percent, lead_gene_count)
//	@Param			desc		query		bool	false	"Sort descending"
//	@Param			page		query		int		false	"0-based page"
//	@Param			page_size	query		int		false	"Rows per page"
//	@Success		200			{object}	pipeline.TermsPage
//	@Failure		400			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Router			/projects/{project}/files/{file}/terms [get]
func (h *Handler) Terms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))

	resp, err := h.pl.Terms(r.Context(), chi.URLParam(r, "project"), chi.URLParam(r, "file"), query(r), page, size)
	if err != nil {
		writeError(w, "terms", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Charts handles GET /api/projects/{project}/files/{file}/terms/{row}/charts.
// A row that no longer belongs to the view named by view_id yields empty
// figures with stale set, not an error.
//
//	@Summary		Lead-gene layout and figures for one table row
//	@Tags			terms
//	@Produce		json
//	@Param			project	path		string	true	"Project"
//	@Param			file	path		string	true	"Result file name"
//	@Param			row		path		int		true	"Row index within the view"
//	@Param			view_id	query		string	true	"View the row was taken from"
//	@Success		200		{object}	pipeline.Selection
//	@Failure		400		{object}	errResponse
//	@Router			/projects/{project}/files/{file}/terms/{row}/charts [get]
func (h *Handler) Charts(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("row must be a non-negative integer"))
		return
	}
	sel, err := h.pl.Select(r.Context(), chi.URLParam(r, "project"), chi.URLParam(r, "file"), query(r), row, r.URL.Query().Get("view_id"))
	if err != nil {
		writeError(w, "charts", err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// Dispatch handles POST /api/dispatch.
//
//	@Summary		Apply a dashboard event and render the resulting view
//	@Tags			dashboard
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DispatchRequest	true	"Current state and event"
//	@Success		200		{object}	pipeline.View
//	@Failure		400		{object}	errResponse
//	@Router			/dispatch [post]
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDispatchBytes)
	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	view, err := h.pl.Dispatch(r.Context(), req.State, req.Event)
	if err != nil {
		writeError(w, "dispatch", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// FindGene handles GET /api/genes/{gene}.
//
//	@Summary		Terms across all result files whose leading edge contains a gene
//	@Tags			index
//	@Produce		json
//	@Param			gene	path		string	true	"Gene symbol (case-sensitive)"
//	@Param			all		query		bool	false	"Include terms failing the p-value gate"
//	@Param			limit	query		int		false	"Maximum hits"
//	@Success		200		{object}	GeneResponse
//	@Failure		503		{object}	errResponse
//	@Router			/genes/{gene} [get]
func (h *Handler) FindGene(w http.ResponseWriter, r *http.Request) {
	if h.idx == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("index disabled"))
		return
	}
	gene := chi.URLParam(r, "gene")
	q := r.URL.Query()
	all, _ := strconv.ParseBool(q.Get("all"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultGeneLimit
	}

	hits, err := h.idx.FindGene(gene, !all, limit)
	if err != nil {
		slog.Error("find gene failed", slog.String("gene", gene), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, GeneResponse{Gene: gene, Hits: toGeneHits(hits)})
}

// IndexStatus handles GET /api/index/status.
//
//	@Summary		Load status of every indexed result file
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	IndexStatusResponse
//	@Failure		503	{object}	errResponse
//	@Router			/index/status [get]
func (h *Handler) IndexStatus(w http.ResponseWriter, _ *http.Request) {
	if h.idx == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("index disabled"))
		return
	}
	rows, err := h.idx.Results()
	if err != nil {
		slog.Error("index status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, toIndexStatus(rows))
}
