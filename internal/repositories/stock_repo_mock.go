package repositories

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
)

// MockStockRepository is an in-memory implementation of StockRepository.
type MockStockRepository struct {
	stock map[int]int
	mu    sync.Mutex
}

func NewMockStockRepository() *MockStockRepository {
	return &MockStockRepository{stock: make(map[int]int)}
}

func (r *MockStockRepository) Get(_ context.Context, productID int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	remaining, ok := r.stock[productID]
	return remaining, ok, nil
}

func (r *MockStockRepository) Set(_ context.Context, productID, remaining int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock[productID] = remaining
	return nil
}

func (r *MockStockRepository) Adjust(_ context.Context, productID, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	remaining, ok := r.stock[productID]
	if !ok {
		return 0, errors.Wrapf(ErrStockNotTracked, "product %d", productID)
	}
	remaining += delta
	r.stock[productID] = remaining
	return remaining, nil
}
