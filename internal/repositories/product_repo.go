package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// List returns up to limit products ordered by id after skipping skip,
	// together with the total number of products.
	List(ctx context.Context, skip, limit int) ([]models.Product, int, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	// Upsert inserts the products or overwrites the ones that already exist.
	Upsert(ctx context.Context, products ...models.Product) error
}
