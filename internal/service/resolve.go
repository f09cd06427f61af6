// Package service holds the request-level workflows for genes, variants and
// patient variant reports. Handlers decode and render; services validate,
// resolve references and persist.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/variant-reports-service/internal/domain"
)

// resolve looks up an entity by id and converts a store miss into a
// NotFoundError naming entity, so callers can surface "<Entity> not found".
func resolve[K any, T any](ctx context.Context, entity string, id K, lookup func(context.Context, K) (*T, error)) (*T, error) {
	found, err := lookup(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewNotFoundError(entity)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", strings.ToLower(entity), err)
	}
	return found, nil
}

// notFoundAs replaces a store miss with a NotFoundError naming entity
func notFoundAs(entity string, err error) error {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFoundError(entity)
	}
	return err
}
