package ledger

import (
	"errors"
	"testing"

	"cucina-backend/internal/models"
)

func seedIngredient(s *fakeStore, id uint, current, allocated float64) {
	s.ingredients[id] = &models.Ingredient{
		ID:             id,
		Name:           "ingredient",
		Unit:           "kg",
		CurrentStock:   current,
		AllocatedStock: allocated,
	}
}

func seedLabel(s *fakeStore, id uint, t models.LabelType) {
	s.labels[id] = &models.Label{ID: id, Type: t, Status: models.LabelStatusActive}
}

func TestAllocateReservesStock(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	svc := NewService(store)

	if err := svc.Allocate(1, 100, 3, PolicyFor(models.LabelTypeLavorato)); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	ing := store.ingredients[1]
	if ing.CurrentStock != 10 || ing.AllocatedStock != 3 {
		t.Fatalf("counters = current %.1f allocated %.1f, want 10/3", ing.CurrentStock, ing.AllocatedStock)
	}
	if len(store.movements) != 1 {
		t.Fatalf("movement count = %d, want 1", len(store.movements))
	}
	m := store.movements[0]
	if m.MovementType != models.MovementAllocated || m.AllocatedQuantityChange != 3 || m.QuantityChange != 0 {
		t.Fatalf("unexpected movement: %+v", m)
	}
	if m.QuantityBefore != 10 || m.QuantityAfter != 10 {
		t.Fatalf("snapshots = %.1f/%.1f, want 10/10", m.QuantityBefore, m.QuantityAfter)
	}
	if err := store.checkInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestAllocateIngredientLabelTracksLabeledStock(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	svc := NewService(store)

	if err := svc.Allocate(1, 100, 2, PolicyFor(models.LabelTypeIngredient)); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	ing := store.ingredients[1]
	if ing.LabeledStock != 2 {
		t.Fatalf("labeled_stock = %.1f, want 2", ing.LabeledStock)
	}
	if ing.AllocatedStock != 2 {
		t.Fatalf("allocated_stock = %.1f, want 2", ing.AllocatedStock)
	}
}

func TestAllocateImmediateConsumptionPolicy(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	svc := NewService(store)

	policy := AllocationPolicy{ReduceCurrentStockNow: true, SkipAllocatedIncrement: true}
	if err := svc.Allocate(1, 100, 4, policy); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	ing := store.ingredients[1]
	if ing.CurrentStock != 6 || ing.AllocatedStock != 0 {
		t.Fatalf("counters = current %.1f allocated %.1f, want 6/0", ing.CurrentStock, ing.AllocatedStock)
	}
	m := store.movements[0]
	if m.MovementType != models.MovementConsumed {
		t.Fatalf("movement type = %s, want consumed", m.MovementType)
	}
	if m.QuantityChange != -4 || m.AllocatedQuantityChange != 0 {
		t.Fatalf("unexpected movement: %+v", m)
	}
}

func TestAllocateInsufficientStock(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 6)
	svc := NewService(store)

	err := svc.Allocate(1, 100, 5, PolicyFor(models.LabelTypeLavorato))
	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Available != 4 || insufficient.Requested != 5 {
		t.Fatalf("error fields = %.1f/%.1f, want 4/5", insufficient.Available, insufficient.Requested)
	}

	// No state mutated.
	ing := store.ingredients[1]
	if ing.CurrentStock != 10 || ing.AllocatedStock != 6 {
		t.Fatalf("counters mutated: %+v", ing)
	}
	if len(store.movements) != 0 || len(store.allocations) != 0 {
		t.Fatal("writes happened despite failed pre-check")
	}
}

func TestAllocateRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore())
	var invalid *ValidationError
	if err := svc.Allocate(1, 100, 0, AllocationPolicy{}); !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestConsumeIngredientLabelReleasesReservationOnly(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	seedLabel(store, 100, models.LabelTypeIngredient)
	svc := NewService(store)

	if err := svc.Allocate(1, 100, 3, PolicyFor(models.LabelTypeIngredient)); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := svc.ConsumeOrDiscard(100, models.MovementConsumed); err != nil {
		t.Fatalf("ConsumeOrDiscard: %v", err)
	}

	ing := store.ingredients[1]
	if ing.CurrentStock != 10 {
		t.Fatalf("current_stock = %.1f, want 10 (consume must not reduce it)", ing.CurrentStock)
	}
	if ing.AllocatedStock != 0 || ing.LabeledStock != 0 {
		t.Fatalf("reservation not released: %+v", ing)
	}
	if store.labels[100].Status != models.LabelStatusConsumed {
		t.Fatalf("label status = %s, want consumed", store.labels[100].Status)
	}
	if len(store.allocations) != 0 {
		t.Fatal("allocations not deleted")
	}
}

func TestDiscardIngredientLabelDestroysStock(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	seedLabel(store, 100, models.LabelTypeIngredient)
	svc := NewService(store)

	if err := svc.Allocate(1, 100, 3, PolicyFor(models.LabelTypeIngredient)); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := svc.ConsumeOrDiscard(100, models.MovementDiscarded); err != nil {
		t.Fatalf("ConsumeOrDiscard: %v", err)
	}

	ing := store.ingredients[1]
	if ing.CurrentStock != 7 {
		t.Fatalf("current_stock = %.1f, want 7 (discard destroys product)", ing.CurrentStock)
	}
	if store.labels[100].Status != models.LabelStatusDiscarded {
		t.Fatalf("label status = %s, want discarded", store.labels[100].Status)
	}
	if err := store.checkInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestConsumeLavoratoLabelReducesCurrentStock(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	seedLabel(store, 100, models.LabelTypeLavorato)
	svc := NewService(store)

	if err := svc.Allocate(1, 100, 4, PolicyFor(models.LabelTypeLavorato)); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := svc.ConsumeOrDiscard(100, models.MovementConsumed); err != nil {
		t.Fatalf("ConsumeOrDiscard: %v", err)
	}

	ing := store.ingredients[1]
	if ing.CurrentStock != 6 || ing.AllocatedStock != 0 {
		t.Fatalf("counters = current %.1f allocated %.1f, want 6/0", ing.CurrentStock, ing.AllocatedStock)
	}
}

func TestConsumeSettledLabelRejected(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedLabel(store, 100, models.LabelTypeIngredient)
	store.labels[100].Status = models.LabelStatusConsumed
	svc := NewService(store)

	var invalid *ValidationError
	if err := svc.ConsumeOrDiscard(100, models.MovementConsumed); !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestConsumeRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore())
	var invalid *ValidationError
	if err := svc.ConsumeOrDiscard(100, models.MovementRestocked); !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func recipeWithLines(id uint, lines ...models.RecipeIngredient) *models.Recipe {
	return &models.Recipe{ID: id, Portions: 1, Ingredients: lines}
}

func TestAllocateRecipeIngredients(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	seedIngredient(store, 2, 5, 0)
	one := uint(1)
	two := uint(2)
	store.recipes[7] = recipeWithLines(7,
		models.RecipeIngredient{ID: 1, IngredientID: &one, Quantity: 2},
		models.RecipeIngredient{ID: 2, IngredientID: &two, Quantity: 1},
	)
	svc := NewService(store)

	if err := svc.AllocateRecipeIngredients(7, 100, 2); err != nil {
		t.Fatalf("AllocateRecipeIngredients: %v", err)
	}

	// Each line pulled quantity*portions from current stock immediately.
	if got := store.ingredients[1].CurrentStock; got != 6 {
		t.Fatalf("ingredient 1 current_stock = %.1f, want 6", got)
	}
	if got := store.ingredients[2].CurrentStock; got != 3 {
		t.Fatalf("ingredient 2 current_stock = %.1f, want 3", got)
	}
	if got := store.ingredients[1].AllocatedStock; got != 0 {
		t.Fatalf("ingredient 1 allocated_stock = %.1f, want 0", got)
	}
	// Allocation links kept for traceability.
	if len(store.allocations) != 2 {
		t.Fatalf("allocation count = %d, want 2", len(store.allocations))
	}
	if err := store.checkInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestAllocateRecipeIngredientsFailFast(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 100, 0) // plenty
	seedIngredient(store, 2, 1, 0)   // not enough
	one := uint(1)
	two := uint(2)
	store.recipes[7] = recipeWithLines(7,
		models.RecipeIngredient{ID: 1, IngredientID: &one, Quantity: 2},
		models.RecipeIngredient{ID: 2, IngredientID: &two, Quantity: 3},
	)
	svc := NewService(store)

	err := svc.AllocateRecipeIngredients(7, 100, 1)
	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.IngredientID != 2 {
		t.Fatalf("failing ingredient = %d, want 2", insufficient.IngredientID)
	}

	// Nothing allocated, not even the line that had sufficient stock.
	if got := store.ingredients[1].CurrentStock; got != 100 {
		t.Fatalf("ingredient 1 current_stock = %.1f, want 100", got)
	}
	if len(store.allocations) != 0 || len(store.movements) != 0 {
		t.Fatal("writes happened despite fail-fast pre-check")
	}
}

func TestReleaseAllocationsAfterPartialRecipeFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	seedIngredient(store, 2, 10, 0)
	one := uint(1)
	two := uint(2)
	store.recipes[7] = recipeWithLines(7,
		models.RecipeIngredient{ID: 1, IngredientID: &one, Quantity: 2},
		models.RecipeIngredient{ID: 2, IngredientID: &two, Quantity: 3},
	)
	// The pre-check passes, then the second line's write fails, leaving the
	// first line allocated against the label.
	store.failUpsertForIngredient = 2
	svc := NewService(store)

	if err := svc.AllocateRecipeIngredients(7, 100, 1); err == nil {
		t.Fatal("expected mid-loop allocation failure")
	}
	if len(store.allocations) != 1 {
		t.Fatalf("allocations after partial failure = %d, want 1", len(store.allocations))
	}

	if err := svc.ReleaseAllocations(100); err != nil {
		t.Fatalf("ReleaseAllocations: %v", err)
	}
	if len(store.allocations) != 0 {
		t.Fatalf("allocations after release = %d, want 0 (no orphaned rows)", len(store.allocations))
	}
}

func TestAllocateRecipeIngredientsSkipsSemilavoratoLines(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	one := uint(1)
	semi := uint(42)
	store.recipes[7] = recipeWithLines(7,
		models.RecipeIngredient{ID: 1, IngredientID: &one, Quantity: 1},
		models.RecipeIngredient{ID: 2, IsSemilavorato: true, SemilavoratoID: &semi, Quantity: 2},
	)
	svc := NewService(store)

	if err := svc.AllocateRecipeIngredients(7, 100, 1); err != nil {
		t.Fatalf("AllocateRecipeIngredients: %v", err)
	}
	if len(store.allocations) != 1 {
		t.Fatalf("allocation count = %d, want 1 (semilavorato line skipped)", len(store.allocations))
	}
}

func TestUnallocateReleasesWithoutSettling(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	seedLabel(store, 100, models.LabelTypeIngredient)
	svc := NewService(store)

	if err := svc.Allocate(1, 100, 3, PolicyFor(models.LabelTypeIngredient)); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := svc.Unallocate(100); err != nil {
		t.Fatalf("Unallocate: %v", err)
	}

	ing := store.ingredients[1]
	if ing.CurrentStock != 10 || ing.AllocatedStock != 0 || ing.LabeledStock != 0 {
		t.Fatalf("counters after unallocate: %+v", ing)
	}
	if store.labels[100].Status != models.LabelStatusActive {
		t.Fatalf("label status = %s, want active", store.labels[100].Status)
	}
	last := store.movements[len(store.movements)-1]
	if last.MovementType != models.MovementUnallocated || last.QuantityChange != 0 {
		t.Fatalf("unexpected movement: %+v", last)
	}
}

func TestRestock(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 2, 0)
	svc := NewService(store)

	if err := svc.Restock(1, 8); err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if got := store.ingredients[1].CurrentStock; got != 10 {
		t.Fatalf("current_stock = %.1f, want 10", got)
	}
	m := store.movements[0]
	if m.MovementType != models.MovementRestocked || m.QuantityBefore != 2 || m.QuantityAfter != 10 {
		t.Fatalf("unexpected movement: %+v", m)
	}
}

func TestMovementsAreAppendOnlySnapshots(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedIngredient(store, 1, 10, 0)
	seedLabel(store, 100, models.LabelTypeLavorato)
	svc := NewService(store)

	if err := svc.Allocate(1, 100, 4, PolicyFor(models.LabelTypeLavorato)); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := svc.ConsumeOrDiscard(100, models.MovementConsumed); err != nil {
		t.Fatalf("ConsumeOrDiscard: %v", err)
	}
	if err := svc.Restock(1, 2); err != nil {
		t.Fatalf("Restock: %v", err)
	}

	if len(store.movements) != 3 {
		t.Fatalf("movement count = %d, want 3", len(store.movements))
	}
	// Each row's before/after chain is consistent with the next.
	for i := 1; i < len(store.movements); i++ {
		if store.movements[i].QuantityBefore != store.movements[i-1].QuantityAfter {
			t.Fatalf("movement chain broken at %d: %+v -> %+v", i, store.movements[i-1], store.movements[i])
		}
	}
}
