package gsea

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/models"
)

func scored(term string, p, nes float64, genes string) models.EnrichmentRecord {
	r := rec(term, p, genes)
	r.NES = nes
	return r
}

func TestNewView_SortsStableWithNaNLast(t *testing.T) {
	records := []models.EnrichmentRecord{
		scored("A", 0.01, 1.0, "X"),
		scored("B", 0.01, math.NaN(), "X"),
		scored("C", 0.01, -2.0, "X"),
		scored("D", 0.01, 1.0, "X"),
	}

	asc, err := NewView("src", records, Query{Sort: ColumnNES})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "D", "B"}, terms(asc.Records))

	desc, err := NewView("src", records, Query{Sort: ColumnNES, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D", "C", "B"}, terms(desc.Records))
}

func TestNewView_SortByCountAndTerm(t *testing.T) {
	records := []models.EnrichmentRecord{
		rec("b", 0.01, "X;Y;Z"),
		rec("a", 0.01, "X"),
		rec("c", 0.01, "X;Y"),
	}
	v, err := NewView("src", records, Query{Sort: ColumnLeadGenes, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, terms(v.Records))

	v, err = NewView("src", records, Query{Sort: ColumnTerm})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, terms(v.Records))
}

func TestNewView_UnknownSortColumn(t *testing.T) {
	_, err := NewView("src", sample(), Query{Sort: "bogus"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.False(t, ValidColumn("bogus"))
	assert.True(t, ValidColumn(ColumnFDR))
}

func TestNewView_IDTracksQueryAndSource(t *testing.T) {
	base, err := NewView("src", sample(), Query{Genes: "TP53, MYC"})
	require.NoError(t, err)

	same, _ := NewView("src", sample(), Query{Genes: " TP53,MYC ,"})
	assert.Equal(t, base.ID, same.ID, "equivalent queries share a view")

	otherGenes, _ := NewView("src", sample(), Query{Genes: "TP53"})
	otherSort, _ := NewView("src", sample(), Query{Genes: "TP53, MYC", Sort: ColumnPValue})
	otherSource, _ := NewView("src2", sample(), Query{Genes: "TP53, MYC"})
	assert.NotEqual(t, base.ID, otherGenes.ID)
	assert.NotEqual(t, base.ID, otherSort.ID)
	assert.NotEqual(t, base.ID, otherSource.ID)
}

func TestView_Page(t *testing.T) {
	var records []models.EnrichmentRecord
	for i := 0; i < 23; i++ {
		records = append(records, rec(string(rune('a'+i)), 0.01, "X"))
	}
	v, err := NewView("src", records, Query{})
	require.NoError(t, err)

	first := v.Page(0, 10)
	require.Len(t, first, 10)
	assert.Equal(t, 0, first[0].Index)

	last := v.Page(2, 10)
	require.Len(t, last, 3)
	assert.Equal(t, 20, last[0].Index)
	assert.Equal(t, "u", last[0].Term)

	assert.Empty(t, v.Page(3, 10))
	assert.Len(t, v.Page(0, 0), DefaultPageSize)
}

func TestView_Select(t *testing.T) {
	v, err := NewView("src", sample(), Query{Genes: "TP53"})
	require.NoError(t, err)

	r, err := v.Select(0, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "PATHWAY_A", r.Term)

	_, err = v.Select(0, "stale")
	assert.ErrorIs(t, err, apperr.ErrNoSelection)
	_, err = v.Select(5, v.ID)
	assert.ErrorIs(t, err, apperr.ErrNoSelection)
	_, err = v.Select(-1, v.ID)
	assert.ErrorIs(t, err, apperr.ErrNoSelection)
}

func TestNewRow_NullsMissingValues(t *testing.T) {
	r := scored("T", 0.01, math.NaN(), "A;B")
	row := NewRow(4, &r)
	assert.Equal(t, 4, row.Index)
	assert.Nil(t, row.NES)
	require.NotNil(t, row.PValue)
	assert.Equal(t, 0.01, *row.PValue)
	assert.Equal(t, 2, row.LeadGeneCount)
}
