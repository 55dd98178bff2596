package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves one window of products from the database.
func (r *GORMProductRepository) List(ctx context.Context, skip, limit int) ([]models.Product, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	products := []models.Product{}
	err := r.db.WithContext(ctx).
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}
	return products, int(total), nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrProductNotFound, "id %d", id)
		}
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return &product, nil
}

// Upsert writes the products, replacing every column of existing rows.
func (r *GORMProductRepository) Upsert(ctx context.Context, products ...models.Product) error {
	if len(products) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&products).Error
	if err != nil {
		return errors.Wrap(err, "upsert products")
	}
	return nil
}
