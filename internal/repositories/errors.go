package repositories

import "github.com/go-faster/errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrStockNotTracked = errors.New("stock not tracked for product")
)
