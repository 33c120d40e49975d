package index

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/gsea-browser/internal/catalog"
)

const csvHeader = "term,es,nes,nom p-val,fdr q-val,gene %,lead_genes\n"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeResult(t *testing.T, root, project, file, body string) {
	t.Helper()
	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testCatalog(t *testing.T) (string, *catalog.FS) {
	t.Helper()
	root := t.TempDir()
	cat, err := catalog.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, cat
}

func TestSync_IndexesAndRecordsFailures(t *testing.T) {
	root, cat := testCatalog(t)
	db := testDB(t)

	writeResult(t, root, "p", "good.csv", csvHeader+"PATHWAY_A,0.6,1.8,0.01,0.04,35,TP53;EGFR\n")
	writeResult(t, root, "p", "bad.csv", "term,es\nX,1\n")
	writeResult(t, root, "p", "notes.txt", "ignored")

	if err := Sync(db, cat, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	good, err := db.GetResult("p", "good.csv")
	if err != nil || good.Status != StatusOK || good.Significant != 1 {
		t.Errorf("good = %+v, err = %v", good, err)
	}
	bad, err := db.GetResult("p", "bad.csv")
	if err != nil || bad.Status != StatusError || bad.Error == "" {
		t.Errorf("bad = %+v, err = %v", bad, err)
	}
	if results, _ := db.Results(); len(results) != 2 {
		t.Errorf("results = %+v", results)
	}
	if hits, _ := db.FindGene("EGFR", true, 0); len(hits) != 1 {
		t.Errorf("EGFR hits = %d, want 1", len(hits))
	}
}

func TestSync_RemovesStaleAndSkipsUnchanged(t *testing.T) {
	root, cat := testCatalog(t)
	db := testDB(t)

	writeResult(t, root, "p", "a.csv", csvHeader+"A,0,0,0.01,0,0,TP53\n")
	writeResult(t, root, "p", "b.csv", csvHeader+"B,0,0,0.01,0,0,MYC\n")
	_ = Sync(db, cat, quietLogger())

	first, _ := db.GetResult("p", "a.csv")
	_ = os.Remove(filepath.Join(root, "p", "b.csv"))
	_ = Sync(db, cat, quietLogger())

	if _, err := db.GetResult("p", "b.csv"); err == nil {
		t.Error("removed file still indexed")
	}
	second, _ := db.GetResult("p", "a.csv")
	if !second.IndexedAt.Equal(first.IndexedAt) {
		t.Error("unchanged file was re-indexed")
	}
}
