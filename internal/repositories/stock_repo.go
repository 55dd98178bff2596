package repositories

import "context"

// StockRepository is the mirrored stock side-table: remaining units keyed by
// product id.
type StockRepository interface {
	// Get returns the remaining units and whether the product is tracked.
	Get(ctx context.Context, productID int) (int, bool, error)
	Set(ctx context.Context, productID, remaining int) error
	// Adjust adds delta to a tracked product and returns the new value.
	// Untracked products yield ErrStockNotTracked.
	Adjust(ctx context.Context, productID, delta int) (int, error)
}
