package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/chart"
	"github.com/starford/gsea-browser/internal/gsea"
	"github.com/starford/gsea-browser/internal/models"
	"github.com/starford/gsea-browser/internal/testutil"
)

func newPipeline(t *testing.T) (string, *Pipeline) {
	t.Helper()
	root, cat := testutil.TestDataRoot(t)
	testutil.WriteResult(t, root, "proj", "run1.csv", testutil.SampleCSV)
	return root, New(cat, 0)
}

func TestProjectsAndFiles(t *testing.T) {
	root, p := newPipeline(t)
	testutil.WriteResult(t, root, "proj", "notes.txt", "x")
	ctx := context.Background()

	projects, err := p.Projects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Option{{Label: "proj", Value: "proj"}}, projects)

	files, err := p.ResultFiles(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, []models.Option{{Label: "run1", Value: "run1.csv"}}, files)

	_, err = p.ResultFiles(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrDiscovery)
}

func TestProjects_EmptyRoot(t *testing.T) {
	_, cat := testutil.TestDataRoot(t)
	projects, err := New(cat, 0).Projects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.NotNil(t, projects)
}

func TestLoadTable(t *testing.T) {
	root, p := newPipeline(t)
	testutil.WriteResult(t, root, "proj", "bad.csv", "term,es\nX,1\n")
	ctx := context.Background()

	table, err := p.LoadTable(ctx, "proj", "run1.csv")
	require.NoError(t, err)
	require.Len(t, table.Records, 3)
	assert.Equal(t, 3, table.Records[0].LeadGeneCount)
	assert.NotEmpty(t, table.Checksum)

	_, err = p.LoadTable(ctx, "proj", "bad.csv")
	assert.ErrorIs(t, err, apperr.ErrSchema)

	_, err = p.LoadTable(ctx, "proj", "missing.csv")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLoadTable_CancelledContext(t *testing.T) {
	_, p := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.LoadTable(ctx, "proj", "run1.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilterTableAndProjection(t *testing.T) {
	_, p := newPipeline(t)
	table, err := p.LoadTable(context.Background(), "proj", "run1.csv")
	require.NoError(t, err)

	rows := FilterTable(table.Records, "TP53")
	require.Len(t, rows, 1)
	assert.Equal(t, "PATHWAY_A", rows[0].Term)

	assert.Len(t, FilterTable(table.Records, ""), 2)
	assert.Empty(t, FilterTable(table.Records, "MYC"))

	layout, err := ProjectSelection(&rows[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"TP53", "BRCA1", "EGFR"}, layout.Genes())
	assert.Equal(t, []int{0, 1, 2}, layout.Positions())

	_, err = ProjectSelection(nil)
	assert.ErrorIs(t, err, apperr.ErrNoSelection)
}

func TestTerms_SortAndPage(t *testing.T) {
	_, p := newPipeline(t)
	ctx := context.Background()

	page, err := p.Terms(ctx, "proj", "run1.csv", gsea.Query{Sort: gsea.ColumnNES}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "PATHWAY_C", page.Rows[0].Term)

	page, err = p.Terms(ctx, "proj", "run1.csv", gsea.Query{Sort: gsea.ColumnNES}, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page, "page is clamped to the last one")
	assert.Equal(t, "PATHWAY_A", page.Rows[0].Term)
	assert.Equal(t, 1, page.Rows[0].Index)

	_, err = p.Terms(ctx, "proj", "run1.csv", gsea.Query{Sort: "bogus"}, 0, 0)
	assert.ErrorIs(t, err, gsea.ErrUnknownColumn)
}

func TestSelect(t *testing.T) {
	_, p := newPipeline(t)
	ctx := context.Background()
	q := gsea.Query{Genes: "EGFR"}

	page, err := p.Terms(ctx, "proj", "run1.csv", q, 0, 0)
	require.NoError(t, err)

	sel, err := p.Select(ctx, "proj", "run1.csv", q, 1, page.ViewID)
	require.NoError(t, err)
	assert.False(t, sel.Stale)
	require.NotNil(t, sel.Row)
	assert.Equal(t, "PATHWAY_C", sel.Row.Term)
	assert.Equal(t, []string{"EGFR", "KRAS"}, sel.Layout.Genes())
	assert.Len(t, sel.Figures, len(chart.Kinds))

	stale, err := p.Select(ctx, "proj", "run1.csv", gsea.Query{Genes: "TP53"}, 1, page.ViewID)
	require.NoError(t, err)
	assert.True(t, stale.Stale)
	assert.Nil(t, stale.Row)
	assert.Empty(t, stale.Layout)
}
