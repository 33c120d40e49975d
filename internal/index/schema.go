// Package index keeps a SQLite catalog index of every result file under the
// data root: load status per file and a lead-gene lookup across files. The
// index is derived from disk at start-up and kept current by the watcher;
// it is never the store of record.
package index

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps the index in process memory.
const MemoryDSN = ":memory:"

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS result_files (
	project     TEXT NOT NULL,
	file        TEXT NOT NULL,
	checksum    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'ok',
	error       TEXT NOT NULL DEFAULT '',
	terms       INTEGER NOT NULL DEFAULT 0,
	significant INTEGER NOT NULL DEFAULT 0,
	indexed_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (project, file)
);

CREATE TABLE IF NOT EXISTS lead_genes (
	project TEXT NOT NULL,
	file    TEXT NOT NULL,
	row     INTEGER NOT NULL,
	term    TEXT NOT NULL,
	gene    TEXT NOT NULL,
	p_value REAL,
	nes     REAL,
	fdr     REAL,
	FOREIGN KEY (project, file) REFERENCES result_files(project, file) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_lead_genes_gene ON lead_genes(gene);
CREATE INDEX IF NOT EXISTS idx_lead_genes_file ON lead_genes(project, file);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	conn, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	// A single connection keeps one in-memory database alive for the process.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
