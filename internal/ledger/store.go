package ledger

import "cucina-backend/internal/models"

// Store is the persistence surface of the ledger. The service is the only
// writer of stock counters, allocations and movements.
type Store interface {
	IngredientByID(id uint) (*models.Ingredient, error)
	SaveIngredient(ing *models.Ingredient) error

	LabelByID(id uint) (*models.Label, error)
	SaveLabel(label *models.Label) error

	AllocationsByLabel(labelID uint) ([]models.IngredientAllocation, error)
	UpsertAllocation(ingredientID, labelID uint, quantity float64) error
	DeleteAllocationsByLabel(labelID uint) error

	AppendMovement(m *models.InventoryMovement) error

	RecipeWithIngredients(recipeID uint) (*models.Recipe, error)
}

// TxStore additionally runs a function against a transactional view of the
// store. Allocate uses it so its check-then-write sequence cannot race with a
// concurrent allocation against the same ingredient.
type TxStore interface {
	Store
	Transact(fn func(Store) error) error
}
