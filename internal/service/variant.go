package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/domain"
	"github.com/variant-reports-service/pkg/schema"
)

// VariantService manages genetic variants and their gene references
type VariantService struct {
	genes     domain.GeneRepository
	variants  domain.VariantRepository
	validator *schema.Validator
	logger    *logrus.Logger
}

// NewVariantService creates a new variant service
func NewVariantService(genes domain.GeneRepository, variants domain.VariantRepository, validator *schema.Validator, logger *logrus.Logger) *VariantService {
	return &VariantService{
		genes:     genes,
		variants:  variants,
		validator: validator,
		logger:    logger,
	}
}

// List returns every variant
func (s *VariantService) List(ctx context.Context) ([]*domain.GeneticVariant, error) {
	return s.variants.List(ctx)
}

// Get returns one variant
func (s *VariantService) Get(ctx context.Context, id uuid.UUID) (*domain.GeneticVariant, error) {
	return resolve(ctx, domain.EntityVariant, id, s.variants.GetByID)
}

// Create validates the payload, resolves its gene and stores a new variant
func (s *VariantService) Create(ctx context.Context, payload schema.Payload) (*domain.GeneticVariant, error) {
	input, err := s.validator.Variant(payload)
	if err != nil {
		return nil, err
	}

	gene, err := resolve(ctx, domain.EntityGene, input.GeneID, s.genes.GetByID)
	if err != nil {
		return nil, err
	}

	variant := &domain.GeneticVariant{GeneID: gene.ID}
	applyVariantInput(variant, input)
	if err := s.variants.Create(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// Update replaces every field of an existing variant, including its gene
func (s *VariantService) Update(ctx context.Context, id uuid.UUID, payload schema.Payload) (*domain.GeneticVariant, error) {
	variant, err := resolve(ctx, domain.EntityVariant, id, s.variants.GetByID)
	if err != nil {
		return nil, err
	}

	input, err := s.validator.Variant(payload)
	if err != nil {
		return nil, err
	}

	gene, err := resolve(ctx, domain.EntityGene, input.GeneID, s.genes.GetByID)
	if err != nil {
		return nil, err
	}

	variant.GeneID = gene.ID
	applyVariantInput(variant, input)
	if err := s.variants.Update(ctx, variant); err != nil {
		return nil, notFoundAs(domain.EntityVariant, err)
	}
	return variant, nil
}

// Delete removes a variant and every report referencing it
func (s *VariantService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.variants.Delete(ctx, id); err != nil {
		return notFoundAs(domain.EntityVariant, err)
	}

	s.logger.WithField("variant_id", id).Info("Variant deleted with dependent reports")
	return nil
}

func applyVariantInput(variant *domain.GeneticVariant, input *domain.VariantInput) {
	variant.Chromosome = input.Chromosome
	variant.Position = input.Position
	variant.ReferenceBase = input.ReferenceBase
	variant.AlternateBase = input.AlternateBase
	variant.Impact = input.Impact
}
