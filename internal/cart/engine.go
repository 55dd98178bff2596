// Package cart holds the cart engine: pure transformations over an ordered
// list of cart lines, plus the session-owned Provider built on top of them.
package cart

import (
	"storefront/internal/models"
)

// Validation messages returned by ValidateAddition.
const (
	ErrInvalidProduct      = "Invalid product"
	ErrNonPositiveQuantity = "Quantity must be greater than 0"
	ErrInsufficientStock   = "Insufficient stock"
)

// Item is a product line in the cart.
type Item struct {
	models.Product
	Quantity int `json:"quantity"`
}

// Cart is an ordered list of items with at most one item per product id.
type Cart []Item

// ValidationResult reports whether a product may be added to a cart.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Err converts a failed result into an error. It returns nil for a valid result.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &RejectedError{Reason: r.Error}
}

// RejectedError carries the reason an addition was refused.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

// AddItem returns a new cart with quantity units of product added. An existing
// line for the same product id is merged; otherwise a line is appended.
// The input cart is never modified.
func AddItem(c Cart, product models.Product, quantity int) Cart {
	out := make(Cart, 0, len(c)+1)
	merged := false
	for _, item := range c {
		if item.ID == product.ID {
			item.Quantity += quantity
			merged = true
			if item.Quantity <= 0 {
				continue
			}
		}
		out = append(out, item)
	}
	if !merged && quantity > 0 {
		out = append(out, Item{Product: product, Quantity: quantity})
	}
	return out
}

// RemoveItem returns a new cart without the line for productID.
func RemoveItem(c Cart, productID int) Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

// Clear returns an empty cart.
func Clear(Cart) Cart {
	return Cart{}
}

// Total sums price times quantity over every line.
func Total(c Cart) float64 {
	var sum float64
	for _, item := range c {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// Find returns the line for productID, if present.
func Find(c Cart, productID int) (Item, bool) {
	for _, item := range c {
		if item.ID == productID {
			return item, true
		}
	}
	return Item{}, false
}

// ValidateAddition checks, in order, that the product is identifiable, the
// quantity is positive and the product has enough stock. The first failing
// check decides the result.
func ValidateAddition(product *models.Product, quantity int) ValidationResult {
	if product == nil || product.ID == 0 {
		return ValidationResult{Error: ErrInvalidProduct}
	}
	if quantity <= 0 {
		return ValidationResult{Error: ErrNonPositiveQuantity}
	}
	if product.Stock < quantity {
		return ValidationResult{Error: ErrInsufficientStock}
	}
	return ValidationResult{Valid: true}
}
