package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLQuerier is satisfied by both *sql.DB and *sql.Tx
type SQLQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteDB is the embedded store used by the lite server
type SQLiteDB struct {
	DB   *sql.DB
	path string
	log  *logrus.Logger
}

// OpenSQLite opens (creating if needed) the database file at path and
// applies the schema. Foreign keys are enforced so deletes cascade.
func OpenSQLite(ctx context.Context, path string, logger *logrus.Logger) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "busy_timeout(5000)")
	dsn := "file:" + path + "?" + params.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; transactions hold the only connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.WithField("path", path).Info("SQLite database opened")

	return &SQLiteDB{DB: db, path: path, log: logger}, nil
}

// Conn returns the transaction bound to ctx, or the database
func (s *SQLiteDB) Conn(ctx context.Context) SQLQuerier {
	if tx := SQLTxFromContext(ctx); tx != nil {
		return tx
	}
	return s.DB
}

// WithinTx runs fn in a transaction. Nested calls reuse the outer transaction.
func (s *SQLiteDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if SQLTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(withSQLTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			s.log.WithError(rbErr).Error("Failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Health checks that the database file is usable
func (s *SQLiteDB) Health(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Path returns the database file path
func (s *SQLiteDB) Path() string {
	return s.path
}

// Close closes the database
func (s *SQLiteDB) Close() error {
	if err := s.DB.Close(); err != nil {
		return err
	}
	s.log.Info("SQLite database closed")
	return nil
}

// allele_frequency is stored as integer thousandths
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS genes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL CHECK (length(symbol) <= 20),
	full_name TEXT NOT NULL CHECK (length(full_name) <= 255),
	function_summary TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS genetic_variants (
	id TEXT PRIMARY KEY,
	gene_id INTEGER NOT NULL REFERENCES genes(id) ON DELETE CASCADE,
	chromosome TEXT NOT NULL CHECK (length(chromosome) <= 10),
	position INTEGER NOT NULL CHECK (position >= 0),
	reference_base TEXT NOT NULL CHECK (length(reference_base) <= 5),
	alternate_base TEXT NOT NULL CHECK (length(alternate_base) <= 5),
	impact TEXT NOT NULL CHECK (length(impact) <= 50),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_genetic_variants_gene_id ON genetic_variants(gene_id);

CREATE TABLE IF NOT EXISTS patient_variant_reports (
	id TEXT PRIMARY KEY,
	patient_id TEXT NOT NULL CHECK (length(patient_id) <= 255),
	variant_id TEXT NOT NULL REFERENCES genetic_variants(id) ON DELETE CASCADE,
	detection_date TEXT NOT NULL,
	allele_frequency INTEGER NOT NULL CHECK (allele_frequency BETWEEN 0 AND 1000),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_patient_variant_reports_patient_id ON patient_variant_reports(patient_id);
CREATE INDEX IF NOT EXISTS idx_patient_variant_reports_variant_id ON patient_variant_reports(variant_id);
`
