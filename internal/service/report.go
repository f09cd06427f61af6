package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/domain"
	"github.com/variant-reports-service/internal/logging"
	"github.com/variant-reports-service/internal/metrics"
	"github.com/variant-reports-service/pkg/schema"
)

// Report creation results recorded in metrics
const (
	resultCreated             = "created"
	resultInvalid             = "invalid"
	resultPatientNotFound     = "patient_not_found"
	resultUpstreamUnavailable = "upstream_unavailable"
	resultVariantNotFound     = "variant_not_found"
	resultRejected            = "rejected"
	resultError               = "error"
)

// ReportService links clinic patients to locally known variants
type ReportService struct {
	reports   domain.ReportRepository
	variants  domain.VariantRepository
	tx        domain.Transactor
	verifier  domain.PatientVerifier
	validator *schema.Validator
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

// NewReportService creates a new report service. m may be nil.
func NewReportService(
	reports domain.ReportRepository,
	variants domain.VariantRepository,
	tx domain.Transactor,
	verifier domain.PatientVerifier,
	validator *schema.Validator,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *ReportService {
	return &ReportService{
		reports:   reports,
		variants:  variants,
		tx:        tx,
		verifier:  verifier,
		validator: validator,
		metrics:   m,
		logger:    logger,
	}
}

// Create runs the report workflow. Each step stops the flow on failure:
//
//  1. validate the payload
//  2. confirm the patient with the clinic service
//  3. resolve the variant
//  4. persist the report
//
// Steps 3 and 4 share a transaction so the variant cannot disappear between
// resolution and insert. The clinic call stays outside it.
func (s *ReportService) Create(ctx context.Context, req domain.CreateReportRequest) (*domain.PatientVariantReport, error) {
	startTime := time.Now()
	log := logging.FromContext(ctx, s.logger)

	input, err := s.validator.Report(req.Payload)
	if err != nil {
		s.metrics.RecordReportCreation(resultInvalid)
		return nil, err
	}

	log = log.WithFields(logrus.Fields{
		"patient_id": input.PatientID,
		"variant_id": input.VariantID,
	})

	if err := s.verifier.VerifyPatient(ctx, input.PatientID, req.Authorization); err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			s.metrics.RecordReportCreation(resultPatientNotFound)
			log.Info("Patient not confirmed by clinic service")
		} else {
			s.metrics.RecordReportCreation(resultUpstreamUnavailable)
			log.WithError(err).Warn("Clinic service unavailable")
		}
		return nil, err
	}

	var report *domain.PatientVariantReport
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		variant, err := resolve(ctx, domain.EntityVariant, input.VariantID, s.variants.GetByID)
		if err != nil {
			return err
		}

		report = &domain.PatientVariantReport{
			PatientID:       input.PatientID,
			VariantID:       variant.ID,
			DetectionDate:   input.DetectionDate,
			AlleleFrequency: input.AlleleFrequency,
		}
		return s.reports.Create(ctx, report)
	})
	if err != nil {
		s.metrics.RecordReportCreation(creationResult(err))
		return nil, err
	}

	s.metrics.RecordReportCreation(resultCreated)
	log.WithFields(logrus.Fields{
		"report_id":   report.ID,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Report created")

	return report, nil
}

func creationResult(err error) string {
	var constraintErr *domain.ConstraintError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return resultVariantNotFound
	case errors.As(err, &constraintErr):
		return resultRejected
	default:
		return resultError
	}
}

// Get returns one report
func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*domain.PatientVariantReport, error) {
	return resolve(ctx, domain.EntityReport, id, s.reports.GetByID)
}

// List returns every report
func (s *ReportService) List(ctx context.Context) ([]*domain.PatientVariantReport, error) {
	return s.reports.List(ctx)
}

// ListByPatient returns the reports recorded for one patient. The patient is
// not re-verified with the clinic service.
func (s *ReportService) ListByPatient(ctx context.Context, patientID string) ([]*domain.PatientVariantReport, error) {
	return s.reports.ListByPatient(ctx, patientID)
}

// Delete removes a report
func (s *ReportService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		return notFoundAs(domain.EntityReport, err)
	}
	return nil
}
