package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/variant-reports-service/internal/domain"
	"github.com/variant-reports-service/pkg/schema"
)

// GeneService manages the gene catalogue
type GeneService struct {
	genes     domain.GeneRepository
	validator *schema.Validator
	logger    *logrus.Logger
}

// NewGeneService creates a new gene service
func NewGeneService(genes domain.GeneRepository, validator *schema.Validator, logger *logrus.Logger) *GeneService {
	return &GeneService{
		genes:     genes,
		validator: validator,
		logger:    logger,
	}
}

// List returns every gene
func (s *GeneService) List(ctx context.Context) ([]*domain.Gene, error) {
	return s.genes.List(ctx)
}

// Get returns one gene
func (s *GeneService) Get(ctx context.Context, id int64) (*domain.Gene, error) {
	return resolve(ctx, domain.EntityGene, id, s.genes.GetByID)
}

// Create validates the payload and stores a new gene
func (s *GeneService) Create(ctx context.Context, payload schema.Payload) (*domain.Gene, error) {
	input, err := s.validator.Gene(payload)
	if err != nil {
		return nil, err
	}

	gene := &domain.Gene{
		Symbol:          input.Symbol,
		FullName:        input.FullName,
		FunctionSummary: input.FunctionSummary,
	}
	if err := s.genes.Create(ctx, gene); err != nil {
		return nil, err
	}
	return gene, nil
}

// Update replaces every field of an existing gene. A missing gene is
// reported before the payload is validated.
func (s *GeneService) Update(ctx context.Context, id int64, payload schema.Payload) (*domain.Gene, error) {
	gene, err := resolve(ctx, domain.EntityGene, id, s.genes.GetByID)
	if err != nil {
		return nil, err
	}

	input, err := s.validator.Gene(payload)
	if err != nil {
		return nil, err
	}

	gene.Symbol = input.Symbol
	gene.FullName = input.FullName
	gene.FunctionSummary = input.FunctionSummary
	if err := s.genes.Update(ctx, gene); err != nil {
		return nil, notFoundAs(domain.EntityGene, err)
	}
	return gene, nil
}

// Delete removes a gene together with its variants and their reports
func (s *GeneService) Delete(ctx context.Context, id int64) error {
	if err := s.genes.Delete(ctx, id); err != nil {
		return notFoundAs(domain.EntityGene, err)
	}

	s.logger.WithField("gene_id", id).Info("Gene deleted with dependent variants and reports")
	return nil
}
