// Package database stores experiment summaries in SQLite: one table of
// microarray rows, one of sequencing rows, and a log of fetch runs.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
	path string
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// Initialize creates and configures the database connection
func Initialize(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_sync=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas run on one pooled connection only; per-connection settings
	// such as foreign_keys must also be in the DSN.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	// One writer at a time; readers share the pool.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{
		DB:   db,
		path: path,
	}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS fetch_runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		accessions INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS experiments (
		accession TEXT PRIMARY KEY,
		has_rnaseq INTEGER NOT NULL DEFAULT 0,
		sra_studies TEXT,
		fetch_run TEXT REFERENCES fetch_runs(id),
		retrieved_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS series (
		accession TEXT NOT NULL REFERENCES experiments(accession) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		uid TEXT NOT NULL,
		gpl TEXT,
		suppfile TEXT,
		ftplink TEXT,
		PRIMARY KEY (accession, uid)
	);

	CREATE TABLE IF NOT EXISTS sequencing_runs (
		accession TEXT NOT NULL REFERENCES experiments(accession) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		uid TEXT NOT NULL,
		run_id TEXT,
		total_spots TEXT,
		total_bases TEXT,
		total_size TEXT,
		experiment TEXT,
		platform TEXT,
		model TEXT,
		tax_id TEXT,
		sample TEXT,
		library_strategy TEXT,
		library_selection TEXT,
		library_source TEXT,
		bio_project TEXT,
		bio_sample TEXT,
		sra_study TEXT,
		sra_id TEXT,
		PRIMARY KEY (accession, uid)
	);

	CREATE INDEX IF NOT EXISTS idx_series_gpl ON series(gpl);
	CREATE INDEX IF NOT EXISTS idx_seq_study ON sequencing_runs(sra_study);
	CREATE INDEX IF NOT EXISTS idx_seq_strategy ON sequencing_runs(library_strategy);
	CREATE INDEX IF NOT EXISTS idx_experiments_run ON experiments(fetch_run);
	`

	_, err := db.Exec(schema)
	return err
}

// CountTable counts rows in a table.
// The table name is validated against the AllowedTables whitelist.
func (db *DB) CountTable(table string) (int64, error) {
	safeTable, err := SafeTableName(table)
	if err != nil {
		return 0, fmt.Errorf("CountTable: %w", err)
	}

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", safeTable)
	err = db.QueryRow(query).Scan(&count)
	return count, err
}
