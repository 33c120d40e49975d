package index

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/gsea"
	"github.com/starford/gsea-browser/internal/models"
)

// Load status values stored in result_files.status.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Key identifies one result file.
type Key struct {
	Project string
	File    string
}

// ResultRow represents a row in the result_files table.
type ResultRow struct {
	Project     string
	File        string
	Checksum    string
	Status      string
	Error       string
	Terms       int
	Significant int
	IndexedAt   time.Time
}

// GeneHit is one term, in one result file, whose leading edge holds the gene.
// Missing numeric values come back as NaN.
type GeneHit struct {
	Project string
	File    string
	FileRow int // 0-based record position in the file, before any filtering
	Term    string
	Gene    string
	PValue  float64
	NES     float64
	FDR     float64
}

// UpsertResult replaces a file's status row and its lead-gene rows within a transaction.
func (db *DB) UpsertResult(r ResultRow, records []models.EnrichmentRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	significant := 0
	for i := range records {
		if gsea.Significant(&records[i]) {
			significant++
		}
	}
	if err := upsertStatus(tx, r.Project, r.File, r.Checksum, StatusOK, "", len(records), significant); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM lead_genes WHERE project = ? AND file = ?`, r.Project, r.File); err != nil {
		return fmt.Errorf("index: clear genes: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO lead_genes (project, file, row, term, gene, p_value, nes, fdr)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare gene insert: %w", err)
	}
	defer stmt.Close()
	for i, rec := range records {
		for _, gene := range rec.LeadGenes {
			if _, err := stmt.Exec(r.Project, r.File, i, rec.Term, gene,
				nullable(rec.PValue), nullable(rec.NES), nullable(rec.FDR)); err != nil {
				return fmt.Errorf("index: insert gene: %w", err)
			}
		}
	}

	return tx.Commit()
}

// MarkFailed records that a file could not be loaded. Any genes previously
// indexed for it are dropped.
func (db *DB) MarkFailed(project, file, checksum string, cause error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := upsertStatus(tx, project, file, checksum, StatusError, msg, 0, 0); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM lead_genes WHERE project = ? AND file = ?`, project, file); err != nil {
		return fmt.Errorf("index: clear genes: %w", err)
	}
	return tx.Commit()
}

func upsertStatus(tx *sql.Tx, project, file, checksum, status, msg string, terms, significant int) error {
	_, err := tx.Exec(`
		INSERT INTO result_files (project, file, checksum, status, error, terms, significant, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project, file) DO UPDATE SET
			checksum    = excluded.checksum,
			status      = excluded.status,
			error       = excluded.error,
			terms       = excluded.terms,
			significant = excluded.significant,
			indexed_at  = excluded.indexed_at
	`, project, file, checksum, status, msg, terms, significant, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: upsert result: %w", err)
	}
	return nil
}

// DeleteResult removes a file and its genes.
func (db *DB) DeleteResult(project, file string) error {
	if _, err := db.conn.Exec(`DELETE FROM result_files WHERE project = ? AND file = ?`, project, file); err != nil {
		return fmt.Errorf("index: delete result: %w", err)
	}
	return nil
}

// DeleteProject removes every file of a project and reports how many were dropped.
func (db *DB) DeleteProject(project string) (int, error) {
	res, err := db.conn.Exec(`DELETE FROM result_files WHERE project = ?`, project)
	if err != nil {
		return 0, fmt.Errorf("index: delete project: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// GetResult returns the status row of one file.
func (db *DB) GetResult(project, file string) (*ResultRow, error) {
	row := db.conn.QueryRow(`
		SELECT project, file, checksum, status, error, terms, significant, indexed_at
		FROM result_files WHERE project = ? AND file = ?`, project, file)
	var r ResultRow
	err := row.Scan(&r.Project, &r.File, &r.Checksum, &r.Status, &r.Error, &r.Terms, &r.Significant, &r.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: result %s/%s: %w", project, file, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get result: %w", err)
	}
	return &r, nil
}

// Results lists every indexed file ordered by project then file.
func (db *DB) Results() ([]ResultRow, error) {
	rows, err := db.conn.Query(`
		SELECT project, file, checksum, status, error, terms, significant, indexed_at
		FROM result_files ORDER BY project, file`)
	if err != nil {
		return nil, fmt.Errorf("index: results: %w", err)
	}
	defer rows.Close()

	out := []ResultRow{}
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(&r.Project, &r.File, &r.Checksum, &r.Status, &r.Error, &r.Terms, &r.Significant, &r.IndexedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindGene returns the terms whose leading edge contains gene, matched
// exactly. With significantOnly set, terms failing the significance gate
// are skipped. limit <= 0 means no limit.
func (db *DB) FindGene(gene string, significantOnly bool, limit int) ([]GeneHit, error) {
	q := `SELECT project, file, row, term, gene, p_value, nes, fdr FROM lead_genes WHERE gene = ?`
	args := []any{gene}
	if significantOnly {
		q += ` AND p_value IS NOT NULL AND p_value <= ?`
		args = append(args, gsea.SignificanceThreshold)
	}
	q += ` ORDER BY project, file, row`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: find gene: %w", err)
	}
	defer rows.Close()

	out := []GeneHit{}
	for rows.Next() {
		var h GeneHit
		var p, nes, fdr sql.NullFloat64
		if err := rows.Scan(&h.Project, &h.File, &h.FileRow, &h.Term, &h.Gene, &p, &nes, &fdr); err != nil {
			return nil, err
		}
		h.PValue, h.NES, h.FDR = orNaN(p), orNaN(nes), orNaN(fdr)
		out = append(out, h)
	}
	return out, rows.Err()
}

// AllChecksums returns the stored checksum of every indexed file.
func (db *DB) AllChecksums() (map[Key]string, error) {
	rows, err := db.conn.Query(`SELECT project, file, checksum FROM result_files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[Key]string)
	for rows.Next() {
		var k Key
		var cs string
		if err := rows.Scan(&k.Project, &k.File, &cs); err != nil {
			return nil, err
		}
		out[k] = cs
	}
	return out, rows.Err()
}

// nullable binds NaN and infinities as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
