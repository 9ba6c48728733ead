package usecase

import (
	"errors"

	repo "kasir/internal/repository"
)

// Error kinds. Wrap with fmt.Errorf("%w: ...") for detail and match with errors.Is.
var (
	// Bad input. Prior state is left unchanged.
	ErrValidation = errors.New("validation error")
	// Add or increase rejected; cart and stock unchanged.
	ErrOutOfStock = errors.New("out of stock")
	// Update/delete/lookup against a vanished id.
	ErrNotFound = repo.ErrNotFound
	// Checkout with no lines; nothing written.
	ErrEmptyCart = errors.New("cart empty")
	// Delete refused while the open cart holds stock for the product.
	ErrReserved = errors.New("product reserved by cart")
)
