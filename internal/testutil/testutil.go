// Package testutil provides shared test helpers for setting up data roots and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/gsea-browser/internal/catalog"
	"github.com/starford/gsea-browser/internal/index"
)

// Header is the column row of a well-formed result file.
const Header = "term,es,nes,nom p-val,fdr q-val,gene %,lead_genes\n"

// SampleCSV has two significant terms and one that fails the p-value gate.
const SampleCSV = Header +
	"PATHWAY_A,0.61,1.80,0.01,0.04,35.5,TP53;BRCA1;EGFR\n" +
	"PATHWAY_B,-0.42,-1.20,0.20,0.30,10.0,MYC\n" +
	"PATHWAY_C,0.55,1.65,0.03,0.08,22.0,EGFR;KRAS\n"

// TestDB opens an in-memory index that is closed when the test ends.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(index.MemoryDSN)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataRoot creates a temporary data root with a catalog over it.
func TestDataRoot(t *testing.T) (string, *catalog.FS) {
	t.Helper()
	root := t.TempDir()
	cat, err := catalog.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, cat
}

// WriteResult writes body to <root>/<project>/<file>, creating the project directory.
func WriteResult(t *testing.T, root, project, file, body string) {
	t.Helper()
	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}
