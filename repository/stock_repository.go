package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/partspoint/autoparts-backend/models"
)

// StockRepository owns the per-product stock counters. DecrementIfAvailable
// is the only way stock goes down: a single conditional UPDATE, so two
// concurrent checkouts racing for the last unit serialize on the row and
// exactly one of them wins.
type StockRepository interface {
	Get(ctx context.Context, productID string) (*models.StockLevel, error)
	Upsert(ctx context.Context, level *models.StockLevel) error
	DecrementIfAvailable(ctx context.Context, productID string, quantity int) error
	Increment(ctx context.Context, productID string, quantity int) error
}

type gormStockRepo struct {
	db *gorm.DB
}

func NewGormStockRepository(db *gorm.DB) StockRepository {
	return &gormStockRepo{db: db}
}

func (r *gormStockRepo) Get(ctx context.Context, productID string) (*models.StockLevel, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).First(&level, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *gormStockRepo) Upsert(ctx context.Context, level *models.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

func (r *gormStockRepo) DecrementIfAvailable(ctx context.Context, productID string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.StockLevel{}).
		Where("product_id = ? AND available >= ?", productID, quantity).
		UpdateColumn("available", gorm.Expr("available - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *gormStockRepo) Increment(ctx context.Context, productID string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.StockLevel{}).
		Where("product_id = ?", productID).
		UpdateColumn("available", gorm.Expr("available + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
