package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/database"
	"github.com/variant-reports-service/internal/domain"
)

// GeneRepository handles gene persistence in Postgres
type GeneRepository struct {
	db  *database.DB
	log *logrus.Logger
}

// NewGeneRepository creates a new gene repository
func NewGeneRepository(db *database.DB, logger *logrus.Logger) *GeneRepository {
	return &GeneRepository{
		db:  db,
		log: logger,
	}
}

const geneColumns = `id, symbol, full_name, function_summary`

// Create inserts a gene and assigns its id
func (r *GeneRepository) Create(ctx context.Context, gene *domain.Gene) error {
	query := `
		INSERT INTO genes (symbol, full_name, function_summary)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.db.Conn(ctx).QueryRow(ctx, query,
		gene.Symbol,
		gene.FullName,
		gene.FunctionSummary,
	).Scan(&gene.ID)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"symbol": gene.Symbol,
			"error":  err,
		}).Error("Failed to create gene")
		return fmt.Errorf("creating gene: %w", translatePgError(err, ""))
	}

	r.log.WithFields(logrus.Fields{
		"gene_id": gene.ID,
		"symbol":  gene.Symbol,
	}).Info("Gene created successfully")

	return nil
}

// GetByID retrieves a gene by its id
func (r *GeneRepository) GetByID(ctx context.Context, id int64) (*domain.Gene, error) {
	query := `SELECT ` + geneColumns + ` FROM genes WHERE id = $1`

	gene, err := scanGene(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("gene %d: %w", id, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"gene_id": id,
			"error":   err,
		}).Error("Failed to get gene by ID")
		return nil, fmt.Errorf("getting gene by ID: %w", err)
	}

	return gene, nil
}

// List returns every gene ordered by id
func (r *GeneRepository) List(ctx context.Context) ([]*domain.Gene, error) {
	query := `SELECT ` + geneColumns + ` FROM genes ORDER BY id`

	rows, err := r.db.Conn(ctx).Query(ctx, query)
	if err != nil {
		r.log.WithError(err).Error("Failed to list genes")
		return nil, fmt.Errorf("listing genes: %w", err)
	}
	defer rows.Close()

	genes := make([]*domain.Gene, 0)
	for rows.Next() {
		gene, err := scanGene(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning gene: %w", err)
		}
		genes = append(genes, gene)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating genes: %w", err)
	}

	return genes, nil
}

// Update replaces every mutable field of a gene
func (r *GeneRepository) Update(ctx context.Context, gene *domain.Gene) error {
	query := `
		UPDATE genes
		SET symbol = $2, full_name = $3, function_summary = $4
		WHERE id = $1`

	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		gene.ID,
		gene.Symbol,
		gene.FullName,
		gene.FunctionSummary,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"gene_id": gene.ID,
			"error":   err,
		}).Error("Failed to update gene")
		return fmt.Errorf("updating gene: %w", translatePgError(err, ""))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("gene %d: %w", gene.ID, domain.ErrNotFound)
	}

	r.log.WithField("gene_id", gene.ID).Info("Gene updated successfully")
	return nil
}

// Delete removes a gene. Its variants and their reports cascade.
func (r *GeneRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM genes WHERE id = $1`, id)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"gene_id": id,
			"error":   err,
		}).Error("Failed to delete gene")
		return fmt.Errorf("deleting gene: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("gene %d: %w", id, domain.ErrNotFound)
	}

	r.log.WithField("gene_id", id).Info("Gene deleted successfully")
	return nil
}

func scanGene(row pgx.Row) (*domain.Gene, error) {
	var gene domain.Gene
	if err := row.Scan(&gene.ID, &gene.Symbol, &gene.FullName, &gene.FunctionSummary); err != nil {
		return nil, err
	}
	return &gene, nil
}
