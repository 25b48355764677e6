// Package repository defines the evaluation store interface and errors.
package repository

import (
	"context"

	"github.com/ismailopm12/coffeeqc/internal/domain/types"
)

// Store provides read/write access to scored evaluations.
type Store interface {
	// Save stores e, replacing any evaluation with the same ID.
	Save(ctx context.Context, e types.Evaluation) error

	// Get returns the evaluation with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (types.Evaluation, error)

	// Top returns up to n evaluations of kind ordered by score desc, then
	// ID asc. Kinds without a score return ErrUnranked.
	Top(ctx context.Context, kind string, n int) ([]types.Evaluation, error)

	// Count returns the number of stored evaluations.
	Count(ctx context.Context) int
}
