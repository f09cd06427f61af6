package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/database"
	"github.com/variant-reports-service/internal/domain"
)

// VariantRepository handles genetic variant persistence in Postgres
type VariantRepository struct {
	db  *database.DB
	log *logrus.Logger
}

// NewVariantRepository creates a new variant repository
func NewVariantRepository(db *database.DB, logger *logrus.Logger) *VariantRepository {
	return &VariantRepository{
		db:  db,
		log: logger,
	}
}

const variantColumns = `id, gene_id, chromosome, position, reference_base, alternate_base, impact, created_at`

// Create inserts a new variant, generating its id when unset
func (r *VariantRepository) Create(ctx context.Context, variant *domain.GeneticVariant) error {
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}

	query := `
		INSERT INTO genetic_variants (
			id, gene_id, chromosome, position, reference_base, alternate_base, impact
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query,
		variant.ID,
		variant.GeneID,
		variant.Chromosome,
		variant.Position,
		variant.ReferenceBase,
		variant.AlternateBase,
		string(variant.Impact),
	).Scan(&variant.CreatedAt)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"variant_id": variant.ID,
			"gene_id":    variant.GeneID,
			"error":      err,
		}).Error("Failed to create variant")
		return fmt.Errorf("creating variant: %w", translatePgError(err, domain.EntityGene))
	}

	r.log.WithFields(logrus.Fields{
		"variant_id": variant.ID,
		"gene_id":    variant.GeneID,
		"variant":    variant.String(),
	}).Info("Variant created successfully")

	return nil
}

// GetByID retrieves a variant by its id. Inside a transaction the row is
// locked FOR SHARE so it cannot be deleted before the transaction ends.
func (r *VariantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GeneticVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM genetic_variants WHERE id = $1`
	if database.TxFromContext(ctx) != nil {
		query += ` FOR SHARE`
	}

	variant, err := scanVariant(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("variant %s: %w", id, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"variant_id": id,
			"error":      err,
		}).Error("Failed to get variant by ID")
		return nil, fmt.Errorf("getting variant by ID: %w", err)
	}

	return variant, nil
}

// List returns every variant in insertion order
func (r *VariantRepository) List(ctx context.Context) ([]*domain.GeneticVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM genetic_variants ORDER BY created_at, id`

	rows, err := r.db.Conn(ctx).Query(ctx, query)
	if err != nil {
		r.log.WithError(err).Error("Failed to list variants")
		return nil, fmt.Errorf("listing variants: %w", err)
	}
	defer rows.Close()

	variants := make([]*domain.GeneticVariant, 0)
	for rows.Next() {
		variant, err := scanVariant(rows)
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
func (r *VariantRepository) Update(ctx context.Context, variant *domain.GeneticVariant) error {
	query := `
		UPDATE genetic_variants
		SET gene_id = $2, chromosome = $3, position = $4,
			reference_base = $5, alternate_base = $6, impact = $7
		WHERE id = $1
		RETURNING created_at`

	err := r.db.Conn(ctx).QueryRow(ctx, query,
		variant.ID,
		variant.GeneID,
		variant.Chromosome,
		variant.Position,
		variant.ReferenceBase,
		variant.AlternateBase,
		string(variant.Impact),
	).Scan(&variant.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("variant %s: %w", variant.ID, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"variant_id": variant.ID,
			"error":      err,
		}).Error("Failed to update variant")
		return fmt.Errorf("updating variant: %w", translatePgError(err, domain.EntityGene))
	}

	r.log.WithFields(logrus.Fields{
		"variant_id": variant.ID,
		"gene_id":    variant.GeneID,
	}).Info("Variant updated successfully")

	return nil
}

// Delete removes a variant. Its reports cascade.
func (r *VariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM genetic_variants WHERE id = $1`, id)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"variant_id": id,
			"error":      err,
		}).Error("Failed to delete variant")
		return fmt.Errorf("deleting variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("variant %s: %w", id, domain.ErrNotFound)
	}

	r.log.WithField("variant_id", id).Info("Variant deleted successfully")
	return nil
}

func scanVariant(row pgx.Row) (*domain.GeneticVariant, error) {
	var variant domain.GeneticVariant
	var impact string
	err := row.Scan(
		&variant.ID,
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
	variant.Impact = domain.Impact(impact)
	return &variant, nil
}
