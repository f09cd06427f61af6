package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/variant-reports-service/internal/domain"
	"github.com/variant-reports-service/pkg/schema"
)

func variantPayload(geneID int64) schema.Payload {
	return schema.Payload{
		"geneId":        geneID,
		"chromosome":    "17",
		"position":      43094692,
		"referenceBase": "g",
		"alternateBase": "a",
		"impact":        "high",
	}
}

func TestVariantService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves gene and normalizes fields", func(t *testing.T) {
		genes := new(MockGeneRepository)
		variants := new(MockVariantRepository)
		genes.On("GetByID", ctx, int64(1)).Return(&domain.Gene{ID: 1, Symbol: "BRCA1"}, nil)
		variants.On("Create", ctx, mock.AnythingOfType("*domain.GeneticVariant")).Return(nil)

		svc := NewVariantService(genes, variants, schema.NewValidator(), quietLogger())
		variant, err := svc.Create(ctx, variantPayload(1))

		require.NoError(t, err)
		assert.Equal(t, int64(1), variant.GeneID)
		assert.Equal(t, "G", variant.ReferenceBase)
		assert.Equal(t, domain.HIGH_IMPACT, variant.Impact)
		variants.AssertExpectations(t)
	})

	t.Run("unknown gene", func(t *testing.T) {
		genes := new(MockGeneRepository)
		variants := new(MockVariantRepository)
		genes.On("GetByID", ctx, int64(999)).Return(nil, domain.ErrNotFound)

		svc := NewVariantService(genes, variants, schema.NewValidator(), quietLogger())
		_, err := svc.Create(ctx, variantPayload(999))

		assert.EqualError(t, err, "Gene not found")
		variants.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("validation runs before gene lookup", func(t *testing.T) {
		genes := new(MockGeneRepository)
		variants := new(MockVariantRepository)

		payload := variantPayload(999)
		payload["impact"] = "catastrophic"
		svc := NewVariantService(genes, variants, schema.NewValidator(), quietLogger())
		_, err := svc.Create(ctx, payload)

		var validationErrs *domain.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.True(t, validationErrs.Has("impact"))
		genes.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestVariantService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("missing variant", func(t *testing.T) {
		genes := new(MockGeneRepository)
		variants := new(MockVariantRepository)
		variants.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound)

		svc := NewVariantService(genes, variants, schema.NewValidator(), quietLogger())
		_, err := svc.Update(ctx, id, schema.Payload{})

		assert.EqualError(t, err, "Variant not found")
	})

	t.Run("moves variant to another gene", func(t *testing.T) {
		genes := new(MockGeneRepository)
		variants := new(MockVariantRepository)
		variants.On("GetByID", ctx, id).Return(&domain.GeneticVariant{ID: id, GeneID: 1}, nil)
		genes.On("GetByID", ctx, int64(2)).Return(&domain.Gene{ID: 2}, nil)
		variants.On("Update", ctx, mock.AnythingOfType("*domain.GeneticVariant")).Return(nil)

		svc := NewVariantService(genes, variants, schema.NewValidator(), quietLogger())
		variant, err := svc.Update(ctx, id, variantPayload(2))

		require.NoError(t, err)
		assert.Equal(t, id, variant.ID)
		assert.Equal(t, int64(2), variant.GeneID)
	})

	t.Run("unknown target gene", func(t *testing.T) {
		genes := new(MockGeneRepository)
		variants := new(MockVariantRepository)
		variants.On("GetByID", ctx, id).Return(&domain.GeneticVariant{ID: id, GeneID: 1}, nil)
		genes.On("GetByID", ctx, int64(5)).Return(nil, domain.ErrNotFound)

		svc := NewVariantService(genes, variants, schema.NewValidator(), quietLogger())
		_, err := svc.Update(ctx, id, variantPayload(5))

		assert.EqualError(t, err, "Gene not found")
		variants.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestVariantService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	variants := new(MockVariantRepository)
	variants.On("Delete", ctx, id).Return(domain.ErrNotFound)

	svc := NewVariantService(new(MockGeneRepository), variants, schema.NewValidator(), quietLogger())
	assert.EqualError(t, svc.Delete(ctx, id), "Variant not found")
}
