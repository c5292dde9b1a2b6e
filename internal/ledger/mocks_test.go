package ledger

import (
	"errors"

	"cucina-backend/internal/models"
)

// fakeStore is an in-memory Store for service tests. Transact runs the
// function directly; rollback-on-error fidelity is not needed because the
// assertions check only the success and fail-before-write paths.
type fakeStore struct {
	ingredients map[uint]*models.Ingredient
	labels      map[uint]*models.Label
	allocations []models.IngredientAllocation
	movements   []models.InventoryMovement
	recipes     map[uint]*models.Recipe

	// When set, UpsertAllocation fails for that ingredient, simulating a
	// storage error partway through a multi-line allocation.
	failUpsertForIngredient uint

	nextAllocationID uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ingredients:      map[uint]*models.Ingredient{},
		labels:           map[uint]*models.Label{},
		recipes:          map[uint]*models.Recipe{},
		nextAllocationID: 1,
	}
}

func (s *fakeStore) Transact(fn func(Store) error) error { return fn(s) }

func (s *fakeStore) IngredientByID(id uint) (*models.Ingredient, error) {
	ing, ok := s.ingredients[id]
	if !ok {
		return nil, errors.New("ingredient not found")
	}
	copied := *ing
	return &copied, nil
}

func (s *fakeStore) SaveIngredient(ing *models.Ingredient) error {
	copied := *ing
	s.ingredients[ing.ID] = &copied
	return nil
}

func (s *fakeStore) LabelByID(id uint) (*models.Label, error) {
	label, ok := s.labels[id]
	if !ok {
		return nil, errors.New("label not found")
	}
	copied := *label
	return &copied, nil
}

func (s *fakeStore) SaveLabel(label *models.Label) error {
	copied := *label
	s.labels[label.ID] = &copied
	return nil
}

func (s *fakeStore) AllocationsByLabel(labelID uint) ([]models.IngredientAllocation, error) {
	var out []models.IngredientAllocation
	for _, a := range s.allocations {
		if a.LabelID == labelID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) UpsertAllocation(ingredientID, labelID uint, quantity float64) error {
	if s.failUpsertForIngredient != 0 && s.failUpsertForIngredient == ingredientID {
		return errors.New("allocation write failed")
	}
	for i := range s.allocations {
		if s.allocations[i].IngredientID == ingredientID && s.allocations[i].LabelID == labelID {
			s.allocations[i].Quantity = quantity
			return nil
		}
	}
	s.allocations = append(s.allocations, models.IngredientAllocation{
		ID:           s.nextAllocationID,
		IngredientID: ingredientID,
		LabelID:      labelID,
		Quantity:     quantity,
	})
	s.nextAllocationID++
	return nil
}

func (s *fakeStore) DeleteAllocationsByLabel(labelID uint) error {
	kept := s.allocations[:0]
	for _, a := range s.allocations {
		if a.LabelID != labelID {
			kept = append(kept, a)
		}
	}
	s.allocations = kept
	return nil
}

func (s *fakeStore) AppendMovement(m *models.InventoryMovement) error {
	m.ID = uint(len(s.movements) + 1)
	s.movements = append(s.movements, *m)
	return nil
}

func (s *fakeStore) RecipeWithIngredients(recipeID uint) (*models.Recipe, error) {
	r, ok := s.recipes[recipeID]
	if !ok {
		return nil, errors.New("recipe not found")
	}
	return r, nil
}

// checkInvariants asserts the stock-counter invariant over every ingredient.
func (s *fakeStore) checkInvariants() error {
	for _, ing := range s.ingredients {
		if ing.AllocatedStock < 0 {
			return errors.New("allocated_stock below zero")
		}
		if ing.CurrentStock < ing.AllocatedStock {
			return errors.New("current_stock below allocated_stock")
		}
		if ing.LabeledStock > ing.CurrentStock {
			return errors.New("labeled_stock above current_stock")
		}
	}
	return nil
}
