package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/variant-reports-service/internal/database"
	"github.com/variant-reports-service/internal/domain"
)

type sqliteRepos struct {
	db       *database.SQLiteDB
	genes    *SQLiteGeneRepository
	variants *SQLiteVariantRepository
	reports  *SQLiteReportRepository
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func setupSQLite(t *testing.T) *sqliteRepos {
	t.Helper()
	logger := quietLogger()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &sqliteRepos{
		db:       db,
		genes:    NewSQLiteGeneRepository(db, logger),
		variants: NewSQLiteVariantRepository(db, logger),
		reports:  NewSQLiteReportRepository(db, logger),
	}
}

func newGene(symbol string) *domain.Gene {
	return &domain.Gene{Symbol: symbol, FullName: symbol + " full name", FunctionSummary: "summary"}
}

func newVariant(geneID int64) *domain.GeneticVariant {
	return &domain.GeneticVariant{
		GeneID:        geneID,
		Chromosome:    "17",
		Position:      43094692,
		ReferenceBase: "G",
		AlternateBase: "A",
		Impact:        domain.HIGH_IMPACT,
	}
}

func newReport(patientID string, variantID uuid.UUID) *domain.PatientVariantReport {
	return &domain.PatientVariantReport{
		PatientID:       patientID,
		VariantID:       variantID,
		DetectionDate:   domain.NewDate(2024, time.March, 15),
		AlleleFrequency: domain.NewAlleleFrequency(420),
	}
}

func TestSQLiteGeneRepository_CRUD(t *testing.T) {
	repos := setupSQLite(t)
	ctx := context.Background()

	gene := newGene("BRCA1")
	require.NoError(t, repos.genes.Create(ctx, gene))
	assert.NotZero(t, gene.ID)

	got, err := repos.genes.GetByID(ctx, gene.ID)
	require.NoError(t, err)
	assert.Equal(t, gene, got)

	second := newGene("TP53")
	require.NoError(t, repos.genes.Create(ctx, second))

	genes, err := repos.genes.List(ctx)
	require.NoError(t, err)
	require.Len(t, genes, 2)
	assert.Equal(t, "BRCA1", genes[0].Symbol)
	assert.Equal(t, "TP53", genes[1].Symbol)

	gene.FullName = "Breast cancer type 1"
	require.NoError(t, repos.genes.Update(ctx, gene))
	got, err = repos.genes.GetByID(ctx, gene.ID)
	require.NoError(t, err)
	assert.Equal(t, "Breast cancer type 1", got.FullName)

	require.NoError(t, repos.genes.Delete(ctx, gene.ID))
	_, err = repos.genes.GetByID(ctx, gene.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, repos.genes.Delete(ctx, gene.ID), domain.ErrNotFound)
	assert.ErrorIs(t, repos.genes.Update(ctx, &domain.Gene{ID: 999, Symbol: "X", FullName: "x", FunctionSummary: "x"}), domain.ErrNotFound)
}

func TestSQLiteGeneRepository_ListEmpty(t *testing.T) {
	repos := setupSQLite(t)

	genes, err := repos.genes.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, genes)
	assert.Empty(t, genes)
}

func TestSQLiteGeneRepository_ConstraintViolation(t *testing.T) {
	repos := setupSQLite(t)

	err := repos.genes.Create(context.Background(), newGene("THIS-SYMBOL-IS-FAR-TOO-LONG"))
	var constraintErr *domain.ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "symbol", constraintErr.Field)
}

func TestSQLiteVariantRepository_CRUD(t *testing.T) {
	repos := setupSQLite(t)
	ctx := context.Background()

	gene := newGene("BRCA1")
	require.NoError(t, repos.genes.Create(ctx, gene))

	variant := newVariant(gene.ID)
	require.NoError(t, repos.variants.Create(ctx, variant))
	assert.NotEqual(t, uuid.Nil, variant.ID)

	got, err := repos.variants.GetByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, variant.ID, got.ID)
	assert.Equal(t, gene.ID, got.GeneID)
	assert.Equal(t, domain.HIGH_IMPACT, got.Impact)
	assert.Equal(t, int64(43094692), got.Position)

	other := newGene("TP53")
	require.NoError(t, repos.genes.Create(ctx, other))
	variant.GeneID = other.ID
	variant.Impact = domain.LOW_IMPACT
	require.NoError(t, repos.variants.Update(ctx, variant))

	got, err = repos.variants.GetByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.GeneID)
	assert.Equal(t, domain.LOW_IMPACT, got.Impact)

	variants, err := repos.variants.List(ctx)
	require.NoError(t, err)
	assert.Len(t, variants, 1)

	require.NoError(t, repos.variants.Delete(ctx, variant.ID))
	_, err = repos.variants.GetByID(ctx, variant.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repos.variants.Delete(ctx, variant.ID), domain.ErrNotFound)
}

func TestSQLiteVariantRepository_MissingGene(t *testing.T) {
	repos := setupSQLite(t)

	err := repos.variants.Create(context.Background(), newVariant(12345))

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, domain.EntityGene, notFound.Entity)
}

func TestSQLiteReportRepository_CRUD(t *testing.T) {
	repos := setupSQLite(t)
	ctx := context.Background()

	gene := newGene("BRCA1")
	require.NoError(t, repos.genes.Create(ctx, gene))
	variant := newVariant(gene.ID)
	require.NoError(t, repos.variants.Create(ctx, variant))

	first := newReport("PAT-1", variant.ID)
	second := newReport("PAT-2", variant.ID)
	third := newReport("PAT-1", variant.ID)
	third.AlleleFrequency = domain.NewAlleleFrequency(1000)
	for _, r := range []*domain.PatientVariantReport{first, second, third} {
		require.NoError(t, repos.reports.Create(ctx, r))
	}

	got, err := repos.reports.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAT-1", got.PatientID)
	assert.Equal(t, variant.ID, got.VariantID)
	assert.Equal(t, "2024-03-15", got.DetectionDate.String())
	assert.Equal(t, domain.AlleleFrequency(420), got.AlleleFrequency)

	all, err := repos.reports.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, third.ID, all[2].ID)

	byPatient, err := repos.reports.ListByPatient(ctx, "PAT-1")
	require.NoError(t, err)
	require.Len(t, byPatient, 2)
	assert.Equal(t, first.ID, byPatient[0].ID)
	assert.Equal(t, third.ID, byPatient[1].ID)

	none, err := repos.reports.ListByPatient(ctx, "UNKNOWN")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, repos.reports.Delete(ctx, second.ID))
	_, err = repos.reports.GetByID(ctx, second.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteReportRepository_MissingVariant(t *testing.T) {
	repos := setupSQLite(t)

	err := repos.reports.Create(context.Background(), newReport("PAT-1", uuid.New()))

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, domain.EntityVariant, notFound.Entity)
}

func TestSQLiteReportRepository_FrequencyOutOfRange(t *testing.T) {
	repos := setupSQLite(t)
	ctx := context.Background()

	gene := newGene("BRCA1")
	require.NoError(t, repos.genes.Create(ctx, gene))
	variant := newVariant(gene.ID)
	require.NoError(t, repos.variants.Create(ctx, variant))

	report := newReport("PAT-1", variant.ID)
	report.AlleleFrequency = domain.NewAlleleFrequency(1500)

	err := repos.reports.Create(ctx, report)
	var constraintErr *domain.ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, "alleleFrequency", constraintErr.Field)
}

func TestSQLiteRepositories_GeneDeleteCascades(t *testing.T) {
	repos := setupSQLite(t)
	ctx := context.Background()

	gene := newGene("BRCA1")
	require.NoError(t, repos.genes.Create(ctx, gene))
	variant := newVariant(gene.ID)
	require.NoError(t, repos.variants.Create(ctx, variant))
	report := newReport("PAT-1", variant.ID)
	require.NoError(t, repos.reports.Create(ctx, report))

	require.NoError(t, repos.genes.Delete(ctx, gene.ID))

	_, err := repos.variants.GetByID(ctx, variant.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repos.reports.GetByID(ctx, report.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteRepositories_TransactionRollback(t *testing.T) {
	repos := setupSQLite(t)
	ctx := context.Background()

	gene := newGene("BRCA1")
	require.NoError(t, repos.genes.Create(ctx, gene))
	variant := newVariant(gene.ID)
	require.NoError(t, repos.variants.Create(ctx, variant))

	boom := errors.New("boom")
	err := repos.db.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repos.variants.GetByID(ctx, variant.ID); err != nil {
			return err
		}
		if err := repos.reports.Create(ctx, newReport("PAT-1", variant.ID)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reports, err := repos.reports.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
