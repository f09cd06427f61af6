package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/variant-reports-service/internal/domain"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// MockGeneRepository is a mock implementation of domain.GeneRepository
type MockGeneRepository struct {
	mock.Mock
}

func (m *MockGeneRepository) Create(ctx context.Context, gene *domain.Gene) error {
	args := m.Called(ctx, gene)
	return args.Error(0)
}

func (m *MockGeneRepository) GetByID(ctx context.Context, id int64) (*domain.Gene, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Gene), args.Error(1)
}

func (m *MockGeneRepository) List(ctx context.Context) ([]*domain.Gene, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Gene), args.Error(1)
}

func (m *MockGeneRepository) Update(ctx context.Context, gene *domain.Gene) error {
	args := m.Called(ctx, gene)
	return args.Error(0)
}

func (m *MockGeneRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockVariantRepository is a mock implementation of domain.VariantRepository
type MockVariantRepository struct {
	mock.Mock
}

func (m *MockVariantRepository) Create(ctx context.Context, variant *domain.GeneticVariant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockVariantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GeneticVariant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneticVariant), args.Error(1)
}

func (m *MockVariantRepository) List(ctx context.Context) ([]*domain.GeneticVariant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GeneticVariant), args.Error(1)
}

func (m *MockVariantRepository) Update(ctx context.Context, variant *domain.GeneticVariant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReportRepository is a mock implementation of domain.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, report *domain.PatientVariantReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PatientVariantReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientVariantReport), args.Error(1)
}

func (m *MockReportRepository) List(ctx context.Context) ([]*domain.PatientVariantReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PatientVariantReport), args.Error(1)
}

func (m *MockReportRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.PatientVariantReport, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PatientVariantReport), args.Error(1)
}

func (m *MockReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPatientVerifier is a mock implementation of domain.PatientVerifier
type MockPatientVerifier struct {
	mock.Mock
}

func (m *MockPatientVerifier) VerifyPatient(ctx context.Context, patientID, authorization string) error {
	args := m.Called(ctx, patientID, authorization)
	return args.Error(0)
}

// recordingTx runs fn directly and counts how often a transaction was opened
type recordingTx struct {
	calls int
}

func (tx *recordingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}
