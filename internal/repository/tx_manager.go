package repository

import "context"

// Repositories bound to one store transaction.
type TxRepos interface {
	Products() ProductRepository
	Inventory() InventoryRepository
	Transactions() TransactionRepository
}

// Hides begin/commit/rollback from the use cases.
// Change notifications are published only after commit.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
