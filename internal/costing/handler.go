package costing

import (
	"errors"

	"cucina-backend/internal/database"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LineCostResponse struct {
	RecipeIngredientID uint   `json:"recipe_ingredient_id"`
	Cost               string `json:"cost"`
	Conversion         string `json:"conversion"`
}

type RecipeCostResponse struct {
	RecipeID       uint               `json:"recipe_id"`
	Portions       int                `json:"portions"`
	TotalCost      string             `json:"total_cost"`
	CostPerPortion string             `json:"cost_per_portion"`
	Lines          []LineCostResponse `json:"lines"`
}

// GET /api/recipes/:id/cost
func RecipeCostHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid recipe id")
		}

		source := &GormRecipeSource{DB: database.DB}
		recipe, err := source.RecipeByID(uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "recipe not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not load recipe")
		}

		engine := NewEngine(source)
		total, lines, err := engine.TotalCost(recipe)
		if err != nil {
			var cycle *CycleError
			var invalid *ValidationError
			switch {
			case errors.As(err, &cycle):
				return fiber.NewError(fiber.StatusUnprocessableEntity, cycle.Error())
			case errors.As(err, &invalid):
				return fiber.NewError(fiber.StatusUnprocessableEntity, invalid.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "could not compute recipe cost")
			}
		}

		perPortion, err := engine.CostPerPortion(recipe)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not compute recipe cost")
		}

		resp := RecipeCostResponse{
			RecipeID:       recipe.ID,
			Portions:       recipe.Portions,
			TotalCost:      total.StringFixed(2),
			CostPerPortion: perPortion.StringFixed(2),
			Lines:          make([]LineCostResponse, 0, len(lines)),
		}
		for _, lc := range lines {
			resp.Lines = append(resp.Lines, LineCostResponse{
				RecipeIngredientID: lc.RecipeIngredientID,
				Cost:               lc.Cost.StringFixed(2),
				Conversion:         string(lc.Conversion),
			})
		}
		return c.JSON(resp)
	}
}
