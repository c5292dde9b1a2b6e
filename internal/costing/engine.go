package costing

import (
	"fmt"

	"cucina-backend/internal/models"
	"cucina-backend/internal/units"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RecipeSource resolves a recipe with its ingredient lines preloaded. The
// engine uses it to cost semilavorato lines recursively.
type RecipeSource interface {
	RecipeByID(id uint) (*models.Recipe, error)
}

// ConversionOutcome tags how a line's quantity was reconciled against the
// ingredient's base unit.
type ConversionOutcome string

const (
	// UnitConverted: the line unit differed from the base unit and was
	// converted before multiplying by the per-base-unit cost.
	UnitConverted ConversionOutcome = "converted"
	// UnitUsedAsIs: same unit, or an incompatible unit whose raw quantity
	// was used unchanged. The incompatible case is long-standing behavior
	// that reporting depends on; it is logged, not fixed.
	UnitUsedAsIs ConversionOutcome = "used_as_is"
)

type LineCost struct {
	RecipeIngredientID uint
	Cost               decimal.Decimal
	Conversion         ConversionOutcome
}

type CycleError struct {
	RecipeID uint
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("recipe %d participates in a semilavorato cycle", e.RecipeID)
}

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Engine computes recipe and line costs. All monetary arithmetic is decimal;
// rounding is left to callers.
type Engine struct {
	recipes RecipeSource
}

func NewEngine(recipes RecipeSource) *Engine {
	return &Engine{recipes: recipes}
}

// CostOfLine computes the monetary cost of a single recipe line.
func (e *Engine) CostOfLine(line *models.RecipeIngredient) (LineCost, error) {
	return e.costOfLine(line, map[uint]bool{})
}

// TotalCost sums CostOfLine over all lines of the recipe, returning the
// per-line breakdown alongside the total.
func (e *Engine) TotalCost(recipe *models.Recipe) (decimal.Decimal, []LineCost, error) {
	return e.totalCost(recipe, map[uint]bool{})
}

// CostPerPortion is TotalCost divided by the recipe's portion count. A recipe
// with portions <= 0 costs zero; guarding the divide is the caller's job.
func (e *Engine) CostPerPortion(recipe *models.Recipe) (decimal.Decimal, error) {
	return e.costPerPortion(recipe, map[uint]bool{})
}

func (e *Engine) totalCost(recipe *models.Recipe, visiting map[uint]bool) (decimal.Decimal, []LineCost, error) {
	if visiting[recipe.ID] {
		return decimal.Zero, nil, &CycleError{RecipeID: recipe.ID}
	}
	visiting[recipe.ID] = true
	defer delete(visiting, recipe.ID)

	total := decimal.Zero
	lines := make([]LineCost, 0, len(recipe.Ingredients))
	for i := range recipe.Ingredients {
		lc, err := e.costOfLine(&recipe.Ingredients[i], visiting)
		if err != nil {
			return decimal.Zero, nil, err
		}
		total = total.Add(lc.Cost)
		lines = append(lines, lc)
	}
	return total, lines, nil
}

func (e *Engine) costPerPortion(recipe *models.Recipe, visiting map[uint]bool) (decimal.Decimal, error) {
	if recipe.Portions <= 0 {
		return decimal.Zero, nil
	}
	total, _, err := e.totalCost(recipe, visiting)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Div(decimal.NewFromInt(int64(recipe.Portions))), nil
}

func (e *Engine) costOfLine(line *models.RecipeIngredient, visiting map[uint]bool) (LineCost, error) {
	quantity := decimal.NewFromFloat(line.Quantity)

	// A semilavorato's per-portion cost already reflects its own internal
	// yields, so no yield logic applies to the line.
	if line.IsSemilavorato {
		if line.SemilavoratoID == nil {
			return LineCost{}, &ValidationError{Msg: fmt.Sprintf("recipe line %d is flagged semilavorato but references no recipe", line.ID)}
		}
		sub, err := e.recipes.RecipeByID(*line.SemilavoratoID)
		if err != nil {
			return LineCost{}, err
		}
		perPortion, err := e.costPerPortion(sub, visiting)
		if err != nil {
			return LineCost{}, err
		}
		return LineCost{
			RecipeIngredientID: line.ID,
			Cost:               perPortion.Mul(quantity),
			Conversion:         UnitUsedAsIs,
		}, nil
	}

	ing := line.Ingredient
	if ing == nil {
		return LineCost{}, &ValidationError{Msg: fmt.Sprintf("recipe line %d has no ingredient loaded", line.ID)}
	}

	baseCost := decimal.NewFromFloat(ing.CostPerUnit)
	if ing.EffectiveCostPerUnit != nil {
		baseCost = decimal.NewFromFloat(*ing.EffectiveCostPerUnit)
	}
	// True when the stored effective cost already embeds the ingredient's
	// own yield. Applying a second correction on top would compound.
	effectiveAlreadyAdjusted := ing.EffectiveCostPerUnit != nil && ing.YieldPercentage != 100

	adjusted := baseCost
	switch {
	case line.RecipeYieldPercentage != nil && *line.RecipeYieldPercentage > 0:
		y := decimal.NewFromFloat(*line.RecipeYieldPercentage / 100)
		if effectiveAlreadyAdjusted {
			// Recover the unadjusted purchase cost before applying the
			// per-recipe override, so exactly one yield correction applies.
			adjusted = decimal.NewFromFloat(ing.CostPerUnit).Div(y)
		} else {
			adjusted = baseCost.Div(y)
		}
	case ing.YieldPercentage > 0 && ing.YieldPercentage < 100 && !effectiveAlreadyAdjusted:
		adjusted = baseCost.Div(decimal.NewFromFloat(ing.YieldPercentage / 100))
	}

	recipeUnit := units.Unit(line.Unit)
	if line.Unit == "" {
		recipeUnit = units.Unit(ing.Unit)
	}
	baseUnit := units.Unit(ing.Unit)

	outcome := UnitUsedAsIs
	lineQuantity := line.Quantity
	if recipeUnit != baseUnit {
		if converted, err := units.Convert(line.Quantity, recipeUnit, baseUnit); err == nil {
			lineQuantity = converted
			outcome = UnitConverted
		} else {
			logrus.WithFields(logrus.Fields{
				"recipe_ingredient_id": line.ID,
				"ingredient_id":        ing.ID,
				"line_unit":            recipeUnit,
				"base_unit":            baseUnit,
			}).Debug("incompatible units on recipe line, using raw quantity")
		}
	}

	return LineCost{
		RecipeIngredientID: line.ID,
		Cost:               adjusted.Mul(decimal.NewFromFloat(lineQuantity)),
		Conversion:         outcome,
	}, nil
}
