package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder       = errors.New("order has no items")
	ErrBadQuantity      = errors.New("quantity must be at least 1")
	ErrBadShippingFee   = errors.New("shipping fee cannot be negative")
	ErrProductNotFound  = errors.New("product not found")
	ErrAlreadyProcessed = errors.New("checkout session already processed")
)

// InsufficientStockError names the product that could not be reserved
// and how many units were actually available.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
