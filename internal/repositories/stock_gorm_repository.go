package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMStockRepository keeps the stock side-table in the main database.
type GORMStockRepository struct {
	db *gorm.DB
}

func NewGORMStockRepository(db *gorm.DB) *GORMStockRepository {
	return &GORMStockRepository{db: db}
}

func (r *GORMStockRepository) Get(ctx context.Context, productID int) (int, bool, error) {
	var entry models.StockEntry
	err := r.db.WithContext(ctx).First(&entry, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "get stock for product %d", productID)
	}
	return entry.Remaining, true, nil
}

func (r *GORMStockRepository) Set(ctx context.Context, productID, remaining int) error {
	entry := models.StockEntry{ProductID: productID, Remaining: remaining}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"remaining", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return errors.Wrapf(err, "set stock for product %d", productID)
	}
	return nil
}

func (r *GORMStockRepository) Adjust(ctx context.Context, productID, delta int) (int, error) {
	var remaining int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.StockEntry{}).
			Where("product_id = ?", productID).
			UpdateColumn("remaining", gorm.Expr("remaining + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStockNotTracked
		}
		var entry models.StockEntry
		if err := tx.First(&entry, "product_id = ?", productID).Error; err != nil {
			return err
		}
		remaining = entry.Remaining
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "adjust stock for product %d", productID)
	}
	return remaining, nil
}
