// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the GSEA result browser as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/gsea"
	"github.com/starford/gsea-browser/internal/index"
	"github.com/starford/gsea-browser/internal/pipeline"
)

const defaultGeneLimit = 50

// Server wraps the MCP server with the browser tools.
type Server struct {
	mcp *server.MCPServer
	pl  *pipeline.Pipeline
	idx index.GeneIndex
}

// New creates a new MCP server with all tools registered. idx may be nil,
// in which case find_gene reports that the index is disabled.
func New(pl *pipeline.Pipeline, idx index.GeneIndex, version string) *Server {
	s := &Server{pl: pl, idx: idx}

	s.mcp = server.NewMCPServer(
		"GSEA Browser",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List the projects (directories) under the data root."),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("list_result_files",
		mcp.WithDescription("List the GSEA result files of a project. The value is the file name to pass to other tools."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
	), s.listResultFiles)

	s.mcp.AddTool(mcp.NewTool("filter_terms",
		mcp.WithDescription("Significant enrichment terms of a result file (nominal p-value <= 0.05), "+
			"optionally restricted to terms whose leading edge contains any of the given genes. "+
			"Returns one page of rows and the view_id to pass to lead_gene_layout. "+
			"See the "+ResultFormatURI+" resource for the file format."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("file", mcp.Required(), mcp.Description("Result file name (e.g. run1.csv)")),
		mcp.WithString("genes", mcp.Description("Comma-separated gene symbols, case-sensitive")),
		mcp.WithString("sort", mcp.Description("Sort column"), mcp.Enum(columnIDs()...)),
		mcp.WithBoolean("desc", mcp.Description("Sort descending")),
		mcp.WithNumber("page", mcp.Description("0-based page")),
		mcp.WithNumber("page_size", mcp.Description("Rows per page")),
	), s.filterTerms)

	s.mcp.AddTool(mcp.NewTool("lead_gene_layout",
		mcp.WithDescription("Positional layout of the leading-edge genes of one row returned by filter_terms. "+
			"Pass the same genes/sort/desc and the view_id from that call."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("file", mcp.Required(), mcp.Description("Result file name")),
		mcp.WithNumber("row", mcp.Required(), mcp.Description("Row index from filter_terms")),
		mcp.WithString("view_id", mcp.Required(), mcp.Description("view_id from filter_terms")),
		mcp.WithString("genes", mcp.Description("Gene query used for filter_terms")),
		mcp.WithString("sort", mcp.Description("Sort column used for filter_terms")),
		mcp.WithBoolean("desc", mcp.Description("Sort direction used for filter_terms")),
	), s.leadGeneLayout)

	s.mcp.AddTool(mcp.NewTool("find_gene",
		mcp.WithDescription("Find enrichment terms across every result file whose leading edge contains a gene. "+
			"file_row is the position in the raw file, not a filter_terms row."),
		mcp.WithString("gene", mcp.Required(), mcp.Description("Gene symbol, case-sensitive")),
		mcp.WithBoolean("all", mcp.Description("Include terms failing the p-value gate")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits")),
	), s.findGene)

	s.mcp.AddTool(mcp.NewTool("get_result_format",
		mcp.WithDescription("Returns the result file format and filtering rules the other tools apply."),
	), s.getResultFormat)

	s.mcp.AddResource(
		mcp.NewResource(ResultFormatURI, "Result File Format",
			mcp.WithResourceDescription("Columns of a GSEA result file and how terms are filtered."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readResultFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func columnIDs() []string {
	ids := make([]string, len(gsea.Columns))
	for i, c := range gsea.Columns {
		ids[i] = c.ID
	}
	return ids
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError turns pipeline failures into tool errors the model can read.
func toolError(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, apperr.ErrDiscovery) {
		return mcp.NewToolResultError(apperr.ErrDiscovery.Error()), nil
	}
	return mcp.NewToolResultError(err.Error()), nil
}

func queryArgs(req mcp.CallToolRequest) gsea.Query {
	return gsea.Query{
		Genes: req.GetString("genes", ""),
		Sort:  req.GetString("sort", ""),
		Desc:  req.GetBool("desc", false),
	}
}

func (s *Server) listProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts, err := s.pl.Projects(ctx)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(opts)
}

func (s *Server) listResultFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts, err := s.pl.ResultFiles(ctx, project)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(opts)
}

func (s *Server) filterTerms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.pl.Terms(ctx, project, file, queryArgs(req), req.GetInt("page", 0), req.GetInt("page_size", 0))
	if err != nil {
		return toolError(err)
	}
	return jsonResult(page)
}

// layoutResult is the lead_gene_layout payload; figures are left to the dashboard.
type layoutResult struct {
	Term   string      `json:"term,omitempty"`
	Layout gsea.Layout `json:"layout"`
	Stale  bool        `json:"stale"`
}

func (s *Server) leadGeneLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := req.RequireInt("row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	viewID, err := req.RequireString("view_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sel, err := s.pl.Select(ctx, project, file, queryArgs(req), row, viewID)
	if err != nil {
		return toolError(err)
	}
	res := layoutResult{Layout: sel.Layout, Stale: sel.Stale}
	if sel.Row != nil {
		res.Term = sel.Row.Term
	}
	return jsonResult(res)
}

// geneHit mirrors index.GeneHit with missing values as null. FileRow is
// the position in the raw file, not a filter_terms row.
type geneHit struct {
	Project string   `json:"project"`
	File    string   `json:"file"`
	FileRow int      `json:"file_row"`
	Term    string   `json:"term"`
	PValue  *float64 `json:"p_value"`
	NES     *float64 `json:"nes"`
	FDR     *float64 `json:"fdr"`
}

func (s *Server) findGene(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.idx == nil {
		return mcp.NewToolResultError("index disabled"), nil
	}
	gene, err := req.RequireString("gene")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultGeneLimit)
	hits, err := s.idx.FindGene(gene, !req.GetBool("all", false), limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]geneHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, geneHit{
			Project: h.Project,
			File:    h.File,
			FileRow: h.FileRow,
			Term:    h.Term,
			PValue:  gsea.Finite(h.PValue),
			NES:     gsea.Finite(h.NES),
			FDR:     gsea.Finite(h.FDR),
		})
	}
	return jsonResult(out)
}

func (s *Server) getResultFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ResultFormatContract), nil
}

func (s *Server) readResultFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ResultFormatURI,
			MIMEType: "text/markdown",
			Text:     ResultFormatContract,
		},
	}, nil
}
