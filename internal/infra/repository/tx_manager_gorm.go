package repository

import (
	"context"

	repo "kasir/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	products     repo.ProductRepository
	inventory    repo.InventoryRepository
	transactions repo.TransactionRepository
}

func (r *txReposGorm) Products() repo.ProductRepository         { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository      { return r.inventory }
func (r *txReposGorm) Transactions() repo.TransactionRepository { return r.transactions }

type TxManagerGorm struct {
	db   *gorm.DB
	feed *ChangeFeed
}

func NewTxManagerGorm(db *gorm.DB, feed *ChangeFeed) *TxManagerGorm {
	return &TxManagerGorm{db: db, feed: feed}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	pending := &pendingChanges{}

	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// repos are rebuilt on the tx handle; their changes wait for commit
		r := &txReposGorm{
			products:     &ProductGormRepository{db: tx, sink: pending},
			inventory:    &InventoryGormRepository{db: tx, sink: pending},
			transactions: &TransactionGormRepository{db: tx, sink: pending},
		}
		return fn(r)
	})
	if err != nil {
		return err
	}

	if tm.feed != nil {
		tm.feed.Notify(pending.tables...)
	}
	return nil
}
