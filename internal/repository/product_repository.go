package repository

import (
	"context"
	"errors"

	"kasir/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// Catalog persistence. List and Search return name ascending.
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	// Search matches name substrings case-insensitively. Blank q lists everything.
	Search(ctx context.Context, q string) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	// Update replaces every field of the product with the same id.
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error
}
