package repository

import (
	"context"

	"kasir/internal/domain/model"
)

// Completed sales. Append-only: no update or delete.
type TransactionRepository interface {
	// Newest first.
	List(ctx context.Context) ([]model.Transaction, error)
	FindByID(ctx context.Context, id int64) (model.Transaction, error)
	// Append assigns t.ID.
	Append(ctx context.Context, t *model.Transaction) error
}
