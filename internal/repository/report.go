package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/database"
	"github.com/variant-reports-service/internal/domain"
)

// ReportRepository handles patient variant report persistence in Postgres
type ReportRepository struct {
	db  *database.DB
	log *logrus.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB, logger *logrus.Logger) *ReportRepository {
	return &ReportRepository{
		db:  db,
		log: logger,
	}
}

const reportColumns = `id, patient_id, variant_id, detection_date, allele_frequency, created_at`

// Create inserts a report, generating its id when unset. A missing variant
// surfaces as a not-found error for the variant.
func (r *ReportRepository) Create(ctx context.Context, report *domain.PatientVariantReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	query := `
		INSERT INTO patient_variant_reports (
			id, patient_id, variant_id, detection_date, allele_frequency
		) VALUES (
			$1, $2, $3, $4, $5
		)
		RETURNING created_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query,
		report.ID,
		report.PatientID,
		report.VariantID,
		report.DetectionDate.Time,
		frequencyToNumeric(report.AlleleFrequency),
	).Scan(&report.CreatedAt)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"report_id":  report.ID,
			"variant_id": report.VariantID,
			"error":      err,
		}).Error("Failed to create report")
		return fmt.Errorf("creating report: %w", translatePgError(err, domain.EntityVariant))
	}

	r.log.WithFields(logrus.Fields{
		"report_id":  report.ID,
		"variant_id": report.VariantID,
	}).Info("Report created successfully")

	return nil
}

// GetByID retrieves a report by its id
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PatientVariantReport, error) {
	query := `SELECT ` + reportColumns + ` FROM patient_variant_reports WHERE id = $1`

	report, err := scanReport(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"report_id": id,
			"error":     err,
		}).Error("Failed to get report by ID")
		return nil, fmt.Errorf("getting report by ID: %w", err)
	}

	return report, nil
}

// List returns every report in insertion order
func (r *ReportRepository) List(ctx context.Context) ([]*domain.PatientVariantReport, error) {
	query := `SELECT ` + reportColumns + ` FROM patient_variant_reports ORDER BY created_at, id`
	return r.query(ctx, query)
}

// ListByPatient returns the reports recorded for one patient
func (r *ReportRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.PatientVariantReport, error) {
	query := `SELECT ` + reportColumns + ` FROM patient_variant_reports WHERE patient_id = $1 ORDER BY created_at, id`
	return r.query(ctx, query, patientID)
}

func (r *ReportRepository) query(ctx context.Context, query string, args ...any) ([]*domain.PatientVariantReport, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		r.log.WithError(err).Error("Failed to list reports")
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.PatientVariantReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
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
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM patient_variant_reports WHERE id = $1`, id)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"report_id": id,
			"error":     err,
		}).Error("Failed to delete report")
		return fmt.Errorf("deleting report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
	}

	r.log.WithField("report_id", id).Info("Report deleted successfully")
	return nil
}

func scanReport(row pgx.Row) (*domain.PatientVariantReport, error) {
	var report domain.PatientVariantReport
	var detected time.Time
	var frequency pgtype.Numeric
	err := row.Scan(
		&report.ID,
		&report.PatientID,
		&report.VariantID,
		&detected,
		&frequency,
		&report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	report.DetectionDate = domain.NewDate(detected.Year(), detected.Month(), detected.Day())
	if report.AlleleFrequency, err = numericToFrequency(frequency); err != nil {
		return nil, err
	}
	return &report, nil
}
