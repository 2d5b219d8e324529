package sales

import (
	"errors"
	"fmt"
)

// ErrEmptySale is returned when a commit request carries no line items.
var ErrEmptySale = errors.New("a sale needs at least one line item")

// ErrUnknownCustomer is returned when the referenced customer does not exist.
var ErrUnknownCustomer = errors.New("customer not found")

// ErrConcurrencyConflict marks lock or serialization failures. The sale was
// not committed; the caller may resubmit from scratch.
var ErrConcurrencyConflict = errors.New("concurrent update conflict")

// InvalidQuantityError reports a line whose quantity is not positive.
type InvalidQuantityError struct {
	Line     int
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("line %d: quantity must be greater than zero, got %d", e.Line, e.Quantity)
}

// UnknownProductError reports a line referencing a product that does not
// exist.
type UnknownProductError struct {
	Line      int
	ProductID uint
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("line %d: product %d not found", e.Line, e.ProductID)
}
