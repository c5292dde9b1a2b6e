package ledger

import "fmt"

// ValidationError rejects bad caller input before any state is touched.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// InsufficientStockError reports a failed availability check. No state is
// mutated when it is returned.
type InsufficientStockError struct {
	IngredientID   uint
	IngredientName string
	Available      float64
	Requested      float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for ingredient %d (%s): available %.3f, requested %.3f",
		e.IngredientID, e.IngredientName, e.Available, e.Requested)
}
