package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/database"
	"github.com/variant-reports-service/internal/domain"
)

// SQLite repositories back the lite server. They share table layout and
// semantics with the Postgres ones; allele frequency is stored as integer
// thousandths and dates as YYYY-MM-DD text.

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func rowsAffected(result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return n, nil
}

// SQLiteGeneRepository handles gene persistence in SQLite
type SQLiteGeneRepository struct {
	db  *database.SQLiteDB
	log *logrus.Logger
}

// NewSQLiteGeneRepository creates a new SQLite gene repository
func NewSQLiteGeneRepository(db *database.SQLiteDB, logger *logrus.Logger) *SQLiteGeneRepository {
	return &SQLiteGeneRepository{db: db, log: logger}
}

// Create inserts a gene and assigns its id
func (r *SQLiteGeneRepository) Create(ctx context.Context, gene *domain.Gene) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx,
		`INSERT INTO genes (symbol, full_name, function_summary) VALUES (?, ?, ?)`,
		gene.Symbol, gene.FullName, gene.FunctionSummary,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{"symbol": gene.Symbol, "error": err}).Error("Failed to create gene")
		return fmt.Errorf("creating gene: %w", translateSQLiteError(err, ""))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	gene.ID = id

	r.log.WithFields(logrus.Fields{"gene_id": gene.ID, "symbol": gene.Symbol}).Info("Gene created successfully")
	return nil
}

// GetByID retrieves a gene by its id
func (r *SQLiteGeneRepository) GetByID(ctx context.Context, id int64) (*domain.Gene, error) {
	row := r.db.Conn(ctx).QueryRowContext(ctx, `SELECT `+geneColumns+` FROM genes WHERE id = ?`, id)

	var gene domain.Gene
	err := row.Scan(&gene.ID, &gene.Symbol, &gene.FullName, &gene.FunctionSummary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("gene %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		r.log.WithFields(logrus.Fields{"gene_id": id, "error": err}).Error("Failed to get gene by ID")
		return nil, fmt.Errorf("getting gene by ID: %w", err)
	}
	return &gene, nil
}

// List returns every gene ordered by id
func (r *SQLiteGeneRepository) List(ctx context.Context) ([]*domain.Gene, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx, `SELECT `+geneColumns+` FROM genes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing genes: %w", err)
	}
	defer rows.Close()

	genes := make([]*domain.Gene, 0)
	for rows.Next() {
		var gene domain.Gene
		if err := rows.Scan(&gene.ID, &gene.Symbol, &gene.FullName, &gene.FunctionSummary); err != nil {
			return nil, fmt.Errorf("scanning gene: %w", err)
		}
		genes = append(genes, &gene)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating genes: %w", err)
	}
	return genes, nil
}

// Update replaces every mutable field of a gene
func (r *SQLiteGeneRepository) Update(ctx context.Context, gene *domain.Gene) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx,
		`UPDATE genes SET symbol = ?, full_name = ?, function_summary = ? WHERE id = ?`,
		gene.Symbol, gene.FullName, gene.FunctionSummary, gene.ID,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{"gene_id": gene.ID, "error": err}).Error("Failed to update gene")
		return fmt.Errorf("updating gene: %w", translateSQLiteError(err, ""))
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("gene %d: %w", gene.ID, domain.ErrNotFound)
	}

	r.log.WithField("gene_id", gene.ID).Info("Gene updated successfully")
	return nil
}

// Delete removes a gene. Its variants and their reports cascade.
func (r *SQLiteGeneRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM genes WHERE id = ?`, id)
	if err != nil {
		r.log.WithFields(logrus.Fields{"gene_id": id, "error": err}).Error("Failed to delete gene")
		return fmt.Errorf("deleting gene: %w", err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("gene %d: %w", id, domain.ErrNotFound)
	}

	r.log.WithField("gene_id", id).Info("Gene deleted successfully")
	return nil
}

// SQLiteVariantRepository handles genetic variant persistence in SQLite
type SQLiteVariantRepository struct {
	db  *database.SQLiteDB
	log *logrus.Logger
}

// NewSQLiteVariantRepository creates a new SQLite variant repository
func NewSQLiteVariantRepository(db *database.SQLiteDB, logger *logrus.Logger) *SQLiteVariantRepository {
	return &SQLiteVariantRepository{db: db, log: logger}
}

// Create inserts a new variant, generating its id when unset
func (r *SQLiteVariantRepository) Create(ctx context.Context, variant *domain.GeneticVariant) error {
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	variant.CreatedAt = time.Now().UTC()

	_, err := r.db.Conn(ctx).ExecContext(ctx, `
		INSERT INTO genetic_variants (
			id, gene_id, chromosome, position, reference_base, alternate_base, impact, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		variant.ID.String(),
		variant.GeneID,
		variant.Chromosome,
		variant.Position,
		variant.ReferenceBase,
		variant.AlternateBase,
		string(variant.Impact),
		variant.CreatedAt,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"variant_id": variant.ID,
			"gene_id":    variant.GeneID,
			"error":      err,
		}).Error("Failed to create variant")
		return fmt.Errorf("creating variant: %w", translateSQLiteError(err, domain.EntityGene))
	}

	r.log.WithFields(logrus.Fields{
		"variant_id": variant.ID,
		"gene_id":    variant.GeneID,
		"variant":    variant.String(),
	}).Info("Variant created successfully")
	return nil
}

// GetByID retrieves a variant by its id
func (r *SQLiteVariantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GeneticVariant, error) {
	row := r.db.Conn(ctx).QueryRowContext(ctx,
		`SELECT `+variantColumns+` FROM genetic_variants WHERE id = ?`, id.String())

	variant, err := scanSQLiteVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("variant %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		r.log.WithFields(logrus.Fields{"variant_id": id, "error": err}).Error("Failed to get variant by ID")
		return nil, fmt.Errorf("getting variant by ID: %w", err)
	}
	return variant, nil
}

// List returns every variant in insertion order
func (r *SQLiteVariantRepository) List(ctx context.Context) ([]*domain.GeneticVariant, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx,
		`SELECT `+variantColumns+` FROM genetic_variants ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing variants: %w", err)
	}
	defer rows.Close()

	variants := make([]*domain.GeneticVariant, 0)
	for rows.Next() {
		variant, err := scanSQLiteVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		variants = append(variants, variant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating variants: %w", err)
	}
	return variants, nil
}

// Update replaces every mutable field of a variant
func (r *SQLiteVariantRepository) Update(ctx context.Context, variant *domain.GeneticVariant) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx, `
		UPDATE genetic_variants
		SET gene_id = ?, chromosome = ?, position = ?, reference_base = ?, alternate_base = ?, impact = ?
		WHERE id = ?`,
		variant.GeneID,
		variant.Chromosome,
		variant.Position,
		variant.ReferenceBase,
		variant.AlternateBase,
		string(variant.Impact),
		variant.ID.String(),
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{"variant_id": variant.ID, "error": err}).Error("Failed to update variant")
		return fmt.Errorf("updating variant: %w", translateSQLiteError(err, domain.EntityGene))
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("variant %s: %w", variant.ID, domain.ErrNotFound)
	}

	r.log.WithFields(logrus.Fields{"variant_id": variant.ID, "gene_id": variant.GeneID}).Info("Variant updated successfully")
	return nil
}

// Delete removes a variant. Its reports cascade.
func (r *SQLiteVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM genetic_variants WHERE id = ?`, id.String())
	if err != nil {
		r.log.WithFields(logrus.Fields{"variant_id": id, "error": err}).Error("Failed to delete variant")
		return fmt.Errorf("deleting variant: %w", err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("variant %s: %w", id, domain.ErrNotFound)
	}

	r.log.WithField("variant_id", id).Info("Variant deleted successfully")
	return nil
}

func scanSQLiteVariant(s scanner) (*domain.GeneticVariant, error) {
	var variant domain.GeneticVariant
	var id, impact string
	err := s.Scan(
		&id,
		&variant.GeneID,
		&variant.Chromosome,
		&variant.Position,
		&variant.ReferenceBase,
		&variant.AlternateBase,
		&impact,
		&variant.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if variant.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing variant id: %w", err)
	}
	variant.Impact = domain.Impact(impact)
	return &variant, nil
}

// SQLiteReportRepository handles patient variant report persistence in SQLite
type SQLiteReportRepository struct {
	db  *database.SQLiteDB
	log *logrus.Logger
}

// NewSQLiteReportRepository creates a new SQLite report repository
func NewSQLiteReportRepository(db *database.SQLiteDB, logger *logrus.Logger) *SQLiteReportRepository {
	return &SQLiteReportRepository{db: db, log: logger}
}

// Create inserts a report, generating its id when unset
func (r *SQLiteReportRepository) Create(ctx context.Context, report *domain.PatientVariantReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	report.CreatedAt = time.Now().UTC()

	_, err := r.db.Conn(ctx).ExecContext(ctx, `
		INSERT INTO patient_variant_reports (
			id, patient_id, variant_id, detection_date, allele_frequency, created_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID.String(),
		report.PatientID,
		report.VariantID.String(),
		report.DetectionDate.String(),
		int64(report.AlleleFrequency),
		report.CreatedAt,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"report_id":  report.ID,
			"variant_id": report.VariantID,
			"error":      err,
		}).Error("Failed to create report")
		return fmt.Errorf("creating report: %w", translateSQLiteError(err, domain.EntityVariant))
	}

	r.log.WithFields(logrus.Fields{"report_id": report.ID, "variant_id": report.VariantID}).Info("Report created successfully")
	return nil
}

// GetByID retrieves a report by its id
func (r *SQLiteReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PatientVariantReport, error) {
	row := r.db.Conn(ctx).QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM patient_variant_reports WHERE id = ?`, id.String())

	report, err := scanSQLiteReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		r.log.WithFields(logrus.Fields{"report_id": id, "error": err}).Error("Failed to get report by ID")
		return nil, fmt.Errorf("getting report by ID: %w", err)
	}
	return report, nil
}

// List returns every report in insertion order
func (r *SQLiteReportRepository) List(ctx context.Context) ([]*domain.PatientVariantReport, error) {
	return r.query(ctx, `SELECT `+reportColumns+` FROM patient_variant_reports ORDER BY rowid`)
}

// ListByPatient returns the reports recorded for one patient
func (r *SQLiteReportRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.PatientVariantReport, error) {
	return r.query(ctx,
		`SELECT `+reportColumns+` FROM patient_variant_reports WHERE patient_id = ? ORDER BY rowid`, patientID)
}

func (r *SQLiteReportRepository) query(ctx context.Context, query string, args ...any) ([]*domain.PatientVariantReport, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.PatientVariantReport, 0)
	for rows.Next() {
		report, err := scanSQLiteReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, nil
}

// Delete removes a report
func (r *SQLiteReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM patient_variant_reports WHERE id = ?`, id.String())
	if err != nil {
		r.log.WithFields(logrus.Fields{"report_id": id, "error": err}).Error("Failed to delete report")
		return fmt.Errorf("deleting report: %w", err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
	}

	r.log.WithField("report_id", id).Info("Report deleted successfully")
	return nil
}

func scanSQLiteReport(s scanner) (*domain.PatientVariantReport, error) {
	var report domain.PatientVariantReport
	var id, variantID, detected string
	var frequency int64
	err := s.Scan(&id, &report.PatientID, &variantID, &detected, &frequency, &report.CreatedAt)
	if err != nil {
		return nil, err
	}

	if report.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing report id: %w", err)
	}
	if report.VariantID, err = uuid.Parse(variantID); err != nil {
		return nil, fmt.Errorf("parsing variant id: %w", err)
	}
	if report.DetectionDate, err = domain.ParseDate(detected); err != nil {
		return nil, fmt.Errorf("parsing detection date: %w", err)
	}
	report.AlleleFrequency = domain.AlleleFrequency(frequency)
	return &report, nil
}
