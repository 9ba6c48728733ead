package repository

import "context"

type InventoryRepository interface {
	// Decrements only when stock >= qty. false means not enough stock.
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// Returns reserved units (cart decrease, removal, discard).
	IncreaseStock(ctx context.Context, productID int64, qty int64) error
}
