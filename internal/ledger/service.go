package ledger

import (
	"fmt"

	"cucina-backend/internal/models"

	"github.com/sirupsen/logrus"
)

// Service is the inventory ledger: the single writer of ingredient stock
// counters, allocations and the append-only movement log.
type Service struct {
	store TxStore
}

func NewService(store TxStore) *Service {
	return &Service{store: store}
}

// Allocate commits quantity of an ingredient to a label under the given
// policy. The availability check and the writes run in one transaction.
func (s *Service) Allocate(ingredientID, labelID uint, quantity float64, policy AllocationPolicy) error {
	if quantity <= 0 {
		return &ValidationError{Msg: "quantity must be positive"}
	}
	return s.store.Transact(func(st Store) error {
		return allocate(st, ingredientID, labelID, quantity, policy)
	})
}

func allocate(st Store, ingredientID, labelID uint, quantity float64, policy AllocationPolicy) error {
	ing, err := st.IngredientByID(ingredientID)
	if err != nil {
		return err
	}

	available := ing.CurrentStock - ing.AllocatedStock
	if available < quantity {
		return &InsufficientStockError{
			IngredientID:   ing.ID,
			IngredientName: ing.Name,
			Available:      available,
			Requested:      quantity,
		}
	}

	before := ing.CurrentStock
	movementType := models.MovementAllocated
	allocatedChange := quantity
	if policy.SkipAllocatedIncrement {
		// The quantity leaves current_stock right away; recording it as
		// allocated too would reserve it twice.
		movementType = models.MovementConsumed
		allocatedChange = 0
	} else {
		ing.AllocatedStock += quantity
	}
	if policy.TrackLabeledStock {
		ing.LabeledStock += quantity
	}
	if policy.ReduceCurrentStockNow {
		ing.CurrentStock -= quantity
	}

	if err := st.UpsertAllocation(ingredientID, labelID, quantity); err != nil {
		return err
	}
	if err := st.SaveIngredient(ing); err != nil {
		return err
	}
	if err := st.AppendMovement(&models.InventoryMovement{
		IngredientID:            ing.ID,
		LabelID:                 &labelID,
		MovementType:            movementType,
		QuantityChange:          ing.CurrentStock - before,
		QuantityBefore:          before,
		QuantityAfter:           ing.CurrentStock,
		AllocatedQuantityChange: allocatedChange,
	}); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"ingredient_id": ing.ID,
		"label_id":      labelID,
		"quantity":      quantity,
		"movement":      movementType,
	}).Info("ingredient allocated")
	return nil
}

// ConsumeOrDiscard settles every allocation of a label and retires it.
// The per-allocation loop is sequential and best-effort: a failure partway
// leaves earlier allocations already settled.
func (s *Service) ConsumeOrDiscard(labelID uint, action models.MovementType) error {
	if action != models.MovementConsumed && action != models.MovementDiscarded {
		return &ValidationError{Msg: fmt.Sprintf("action must be consumed or discarded, got %q", action)}
	}

	label, err := s.store.LabelByID(labelID)
	if err != nil {
		return err
	}
	if label.Status != models.LabelStatusActive {
		return &ValidationError{Msg: fmt.Sprintf("label %d is already %s", label.ID, label.Status)}
	}

	reduceCurrent := shouldReduceCurrentStock(label.Type, action)

	allocations, err := s.store.AllocationsByLabel(labelID)
	if err != nil {
		return err
	}

	for _, alloc := range allocations {
		ing, err := s.store.IngredientByID(alloc.IngredientID)
		if err != nil {
			return err
		}

		before := ing.CurrentStock
		allocatedChange := ing.AllocatedStock
		ing.AllocatedStock -= alloc.Quantity
		if ing.AllocatedStock < 0 {
			ing.AllocatedStock = 0
		}
		allocatedChange = ing.AllocatedStock - allocatedChange

		if reduceCurrent {
			ing.CurrentStock -= alloc.Quantity
			if ing.CurrentStock < 0 {
				ing.CurrentStock = 0
			}
		}
		if label.Type == models.LabelTypeIngredient {
			ing.LabeledStock -= alloc.Quantity
			if ing.LabeledStock < 0 {
				ing.LabeledStock = 0
			}
		}
		if ing.AllocatedStock > ing.CurrentStock {
			ing.AllocatedStock = ing.CurrentStock
		}

		if err := s.store.SaveIngredient(ing); err != nil {
			return err
		}
		if err := s.store.AppendMovement(&models.InventoryMovement{
			IngredientID:            ing.ID,
			LabelID:                 &labelID,
			MovementType:            action,
			QuantityChange:          ing.CurrentStock - before,
			QuantityBefore:          before,
			QuantityAfter:           ing.CurrentStock,
			AllocatedQuantityChange: allocatedChange,
		}); err != nil {
			return err
		}
	}

	if err := s.store.DeleteAllocationsByLabel(labelID); err != nil {
		return err
	}

	label.Status = models.LabelStatusConsumed
	if action == models.MovementDiscarded {
		label.Status = models.LabelStatusDiscarded
	}
	if err := s.store.SaveLabel(label); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"label_id": labelID,
		"type":     label.Type,
		"action":   action,
	}).Info("label settled")
	return nil
}

// AllocateRecipeIngredients pulls every ingredient line of a recipe from
// stock for a preparation of the given portion count. All lines are checked
// for availability before any is allocated; the first insufficient ingredient
// fails the whole call with nothing written.
func (s *Service) AllocateRecipeIngredients(recipeID, labelID uint, portions float64) error {
	if portions <= 0 {
		return &ValidationError{Msg: "portions must be positive"}
	}

	recipe, err := s.store.RecipeWithIngredients(recipeID)
	if err != nil {
		return err
	}

	policy := AllocationPolicy{ReduceCurrentStockNow: true, SkipAllocatedIncrement: true}

	// Fail-fast pre-check over every line before the first write.
	// Semilavorato lines are skipped: their stock lives on their own labels,
	// not on ingredient counters.
	for _, line := range recipe.Ingredients {
		if line.IsSemilavorato || line.IngredientID == nil {
			continue
		}
		ing, err := s.store.IngredientByID(*line.IngredientID)
		if err != nil {
			return err
		}
		needed := line.Quantity * portions
		available := ing.CurrentStock - ing.AllocatedStock
		if available < needed {
			return &InsufficientStockError{
				IngredientID:   ing.ID,
				IngredientName: ing.Name,
				Available:      available,
				Requested:      needed,
			}
		}
	}

	for _, line := range recipe.Ingredients {
		if line.IsSemilavorato || line.IngredientID == nil {
			continue
		}
		needed := line.Quantity * portions
		if err := s.store.Transact(func(st Store) error {
			return allocate(st, *line.IngredientID, labelID, needed, policy)
		}); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseAllocations drops every allocation row of a label without touching
// stock counters or label status. Used to clean up after a recipe allocation
// that failed partway, so no rows stay orphaned against a retired label.
func (s *Service) ReleaseAllocations(labelID uint) error {
	return s.store.DeleteAllocationsByLabel(labelID)
}

// Unallocate releases a still-active label's reservations without consuming
// or discarding anything. The label stays active.
func (s *Service) Unallocate(labelID uint) error {
	label, err := s.store.LabelByID(labelID)
	if err != nil {
		return err
	}
	if label.Status != models.LabelStatusActive {
		return &ValidationError{Msg: fmt.Sprintf("label %d is already %s", label.ID, label.Status)}
	}

	allocations, err := s.store.AllocationsByLabel(labelID)
	if err != nil {
		return err
	}

	for _, alloc := range allocations {
		ing, err := s.store.IngredientByID(alloc.IngredientID)
		if err != nil {
			return err
		}

		allocatedChange := ing.AllocatedStock
		ing.AllocatedStock -= alloc.Quantity
		if ing.AllocatedStock < 0 {
			ing.AllocatedStock = 0
		}
		allocatedChange = ing.AllocatedStock - allocatedChange
		if label.Type == models.LabelTypeIngredient {
			ing.LabeledStock -= alloc.Quantity
			if ing.LabeledStock < 0 {
				ing.LabeledStock = 0
			}
		}

		if err := s.store.SaveIngredient(ing); err != nil {
			return err
		}
		if err := s.store.AppendMovement(&models.InventoryMovement{
			IngredientID:            ing.ID,
			LabelID:                 &labelID,
			MovementType:            models.MovementUnallocated,
			QuantityChange:          0,
			QuantityBefore:          ing.CurrentStock,
			QuantityAfter:           ing.CurrentStock,
			AllocatedQuantityChange: allocatedChange,
		}); err != nil {
			return err
		}
	}

	return s.store.DeleteAllocationsByLabel(labelID)
}

// Restock raises an ingredient's current stock, e.g. after a delivery.
func (s *Service) Restock(ingredientID uint, quantity float64) error {
	if quantity <= 0 {
		return &ValidationError{Msg: "quantity must be positive"}
	}
	return s.store.Transact(func(st Store) error {
		ing, err := st.IngredientByID(ingredientID)
		if err != nil {
			return err
		}
		before := ing.CurrentStock
		ing.CurrentStock += quantity
		if err := st.SaveIngredient(ing); err != nil {
			return err
		}
		return st.AppendMovement(&models.InventoryMovement{
			IngredientID:   ing.ID,
			MovementType:   models.MovementRestocked,
			QuantityChange: quantity,
			QuantityBefore: before,
			QuantityAfter:  ing.CurrentStock,
		})
	})
}
