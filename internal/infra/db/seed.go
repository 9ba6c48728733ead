package db

import (
	"context"
	"log/slog"

	"kasir/internal/domain/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SampleCatalog is what a fresh till starts with.
func SampleCatalog() []model.Product {
	return []model.Product{
		{Name: "Beras 5kg", Price: decimal.NewFromInt(65000), Stock: 10},
		{Name: "Minyak Goreng 1L", Price: decimal.NewFromInt(18000), Stock: 24},
		{Name: "Gula Pasir 1kg", Price: decimal.NewFromInt(14500), Stock: 15},
		{Name: "Telur 1kg", Price: decimal.NewFromInt(28000), Stock: 30},
	}
}

// SeedCatalog inserts the sample products only when the catalog is empty.
func SeedCatalog(ctx context.Context, gdb *gorm.DB, log *slog.Logger) (int, error) {
	var count int64
	if err := gdb.WithContext(ctx).Model(&model.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	products := SampleCatalog()
	if err := gdb.WithContext(ctx).Create(&products).Error; err != nil {
		return 0, err
	}
	log.Info("catalog seeded", slog.Int("products", len(products)))
	return len(products), nil
}
