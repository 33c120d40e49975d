package api

import (
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/gsea-browser/internal/catalog"
)

// RawHandler serves result files as they are on disk.
type RawHandler struct {
	cat catalog.Provider
}

// NewRawHandler creates a handler reading through the catalog.
func NewRawHandler(cat catalog.Provider) *RawHandler {
	return &RawHandler{cat: cat}
}

// ServeFile handles GET /projects/{project}/files/{file}/raw.
//
//	@Summary		Download a result file
//	@Tags			files
//	@Produce		text/csv
//	@Param			project	path	string	true	"Project"
//	@Param			file	path	string	true	"Result file name"
//	@Success		200
//	@Failure		404		{object}	errResponse
//	@Router			/projects/{project}/files/{file}/raw [get]
func (h *RawHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.cat.Path(chi.URLParam(r, "project"), chi.URLParam(r, "file"))
	if err != nil {
		writeError(w, "raw file", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": chi.URLParam(r, "file")}))
	http.ServeFile(w, r, abs)
}
