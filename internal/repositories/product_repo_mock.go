package repositories

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/models"

	"github.com/go-faster/errors"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[int]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[int]models.Product),
	}
}

// List returns products ordered by id.
func (r *MockProductRepository) List(_ context.Context, skip, limit int) ([]models.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	if skip < 0 {
		skip = 0
	}
	productList := []models.Product{}
	for i := skip; i < len(ids) && len(productList) < limit; i++ {
		productList = append(productList, r.products[ids[i]])
	}
	return productList, len(ids), nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id int) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, errors.Wrapf(ErrProductNotFound, "id %d", id)
	}
	return &product, nil
}

// Upsert stores the products by id.
func (r *MockProductRepository) Upsert(_ context.Context, products ...models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range products {
		if p.ID == 0 {
			return errors.New("product id is required")
		}
		r.products[p.ID] = p
	}
	return nil
}
