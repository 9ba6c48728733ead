package repository

import (
	"context"
	"fmt"

	"kasir/internal/domain/model"
	repo "kasir/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db   *gorm.DB
	sink changeSink
}

func NewInventoryGormRepository(db *gorm.DB, feed *ChangeFeed) *InventoryGormRepository {
	r := &InventoryGormRepository{db: db}
	if feed != nil {
		r.sink = feed
	}
	return r
}

// Conditional update: stock never goes below zero.
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("decrease stock: invalid quantity %d", qty)
	}

	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	notify(r.sink, repo.TableProducts)
	return true, nil
}

func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("increase stock: invalid quantity %d", qty)
	}

	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	notify(r.sink, repo.TableProducts)
	return nil
}
