package ledger

import "cucina-backend/internal/models"

// AllocationPolicy determines the stock-counter effects of an allocation.
// Policies are derived from the label type once, in the table below, instead
// of being threaded through calls as loose booleans.
type AllocationPolicy struct {
	// Ingredients are physically pulled from stock the moment a recipe or
	// semilavorato is prepared, not at later consume time.
	ReduceCurrentStockNow bool
	// Skip the allocated_stock increment when the quantity is being removed
	// from current_stock immediately; otherwise it would be double-reserved.
	SkipAllocatedIncrement bool
	// Traceability labels of type "ingredient" also track labeled_stock.
	TrackLabeledStock bool
}

var allocationPolicies = map[models.LabelType]AllocationPolicy{
	models.LabelTypeIngredient:   {TrackLabeledStock: true},
	models.LabelTypeDefrosted:    {},
	models.LabelTypeLavorato:     {},
	models.LabelTypeRecipe:       {ReduceCurrentStockNow: true, SkipAllocatedIncrement: true},
	models.LabelTypeSemilavorato: {ReduceCurrentStockNow: true, SkipAllocatedIncrement: true},
}

// PolicyFor returns the allocation policy of a label type. Unknown types get
// the plain reservation policy.
func PolicyFor(t models.LabelType) AllocationPolicy {
	return allocationPolicies[t]
}

// shouldReduceCurrentStock is the consume/discard matrix. Consuming an
// ingredient, defrosted, recipe or semilavorato label only releases a
// reservation that never (or already did) touch current_stock; discarding it
// destroys physical product. Lavorato labels reduce current_stock on either
// action.
func shouldReduceCurrentStock(t models.LabelType, action models.MovementType) bool {
	if t == models.LabelTypeLavorato {
		return true
	}
	return action == models.MovementDiscarded
}
