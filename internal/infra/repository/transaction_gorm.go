package repository

import (
	"context"
	"errors"

	"kasir/internal/domain/model"
	repo "kasir/internal/repository"

	"gorm.io/gorm"
)

type TransactionGormRepository struct {
	db   *gorm.DB
	sink changeSink
}

func NewTransactionGormRepository(db *gorm.DB, feed *ChangeFeed) *TransactionGormRepository {
	r := &TransactionGormRepository{db: db}
	if feed != nil {
		r.sink = feed
	}
	return r
}

func (r *TransactionGormRepository) List(ctx context.Context) ([]model.Transaction, error) {
	var items []model.Transaction
	err := r.db.WithContext(ctx).
		Order("date desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Transaction{}, err
	}
	return items, nil
}

func (r *TransactionGormRepository) FindByID(ctx context.Context, id int64) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Transaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

func (r *TransactionGormRepository) Append(ctx context.Context, t *model.Transaction) error {
	t.ID = 0
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return err
	}
	notify(r.sink, repo.TableTransactions)
	return nil
}
