package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cucina-backend/internal/database"
	"cucina-backend/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	stockReportCacheKey = "inventory:stock-report"
	stockReportCacheTTL = 5 * time.Minute
)

func httpError(err error) error {
	var insufficient *InsufficientStockError
	var invalid *ValidationError
	switch {
	case errors.As(err, &insufficient):
		return fiber.NewError(fiber.StatusConflict, insufficient.Error())
	case errors.As(err, &invalid):
		return fiber.NewError(fiber.StatusBadRequest, invalid.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, "record not found")
	default:
		logrus.WithError(err).Error("ledger operation failed")
		return fiber.NewError(fiber.StatusInternalServerError, "ledger operation failed")
	}
}

func invalidateStockReport(rdb *redis.Client) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(context.Background(), stockReportCacheKey).Err(); err != nil {
		logrus.WithError(err).Warn("could not invalidate stock report cache")
	}
}

type CreateLabelRequest struct {
	Type         string  `json:"type"`
	RestaurantID uint    `json:"restaurant_id"`
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type LabelResponse struct {
	ID     uint   `json:"id"`
	Code   string `json:"code"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// POST /api/labels
// Issues an ingredient-bound label (ingredient, defrosted, lavorato) and
// allocates stock to it in one step.
func CreateLabelHandler(svc *Service, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLabelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		labelType := models.LabelType(body.Type)
		switch labelType {
		case models.LabelTypeIngredient, models.LabelTypeDefrosted, models.LabelTypeLavorato:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "type must be ingredient, defrosted or lavorato")
		}
		if body.IngredientID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ingredient_id is required")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be positive")
		}

		ingredientID := body.IngredientID
		label := models.Label{
			Code:         uuid.NewString(),
			RestaurantID: body.RestaurantID,
			Type:         labelType,
			Status:       models.LabelStatusActive,
			IngredientID: &ingredientID,
		}
		if err := database.DB.Create(&label).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create label")
		}

		if err := svc.Allocate(ingredientID, label.ID, body.Quantity, PolicyFor(labelType)); err != nil {
			// Allocation failed: retire the just-created label so it cannot
			// be printed against nothing.
			if delErr := database.DB.Delete(&label).Error; delErr != nil {
				logrus.WithError(delErr).WithField("label_id", label.ID).
					Error("could not delete label after failed allocation")
			}
			return httpError(err)
		}
		invalidateStockReport(rdb)

		return c.Status(fiber.StatusCreated).JSON(LabelResponse{
			ID:     label.ID,
			Code:   label.Code,
			Type:   string(label.Type),
			Status: string(label.Status),
		})
	}
}

type CreateRecipeLabelRequest struct {
	RecipeID     uint    `json:"recipe_id"`
	RestaurantID uint    `json:"restaurant_id"`
	Portions     float64 `json:"portions"`
}

// POST /api/labels/recipe
// Issues a production label for a recipe or semilavorato and pulls its
// ingredients from stock.
func CreateRecipeLabelHandler(svc *Service, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRecipeLabelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.RecipeID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "recipe_id is required")
		}
		if body.Portions <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "portions must be positive")
		}

		var recipe models.Recipe
		if err := database.DB.First(&recipe, "id = ?", body.RecipeID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "recipe not found")
		}

		labelType := models.LabelTypeRecipe
		if recipe.IsSemilavorato {
			labelType = models.LabelTypeSemilavorato
		}
		recipeID := recipe.ID
		portions := int(body.Portions)
		label := models.Label{
			Code:         uuid.NewString(),
			RestaurantID: body.RestaurantID,
			Type:         labelType,
			Status:       models.LabelStatusActive,
			RecipeID:     &recipeID,
			Portions:     &portions,
		}
		if err := database.DB.Create(&label).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create label")
		}

		if err := svc.AllocateRecipeIngredients(recipe.ID, label.ID, body.Portions); err != nil {
			// Lines allocated before the failure must not stay bound to a
			// label that is about to disappear.
			if relErr := svc.ReleaseAllocations(label.ID); relErr != nil {
				logrus.WithError(relErr).WithField("label_id", label.ID).
					Error("could not release allocations of failed label")
			}
			if delErr := database.DB.Delete(&label).Error; delErr != nil {
				logrus.WithError(delErr).WithField("label_id", label.ID).
					Error("could not delete label after failed allocation")
			}
			return httpError(err)
		}
		invalidateStockReport(rdb)

		return c.Status(fiber.StatusCreated).JSON(LabelResponse{
			ID:     label.ID,
			Code:   label.Code,
			Type:   string(label.Type),
			Status: string(label.Status),
		})
	}
}

// POST /api/labels/:id/consume and POST /api/labels/:id/discard
func SettleLabelHandler(svc *Service, rdb *redis.Client, action models.MovementType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid label id")
		}
		if err := svc.ConsumeOrDiscard(uint(id), action); err != nil {
			return httpError(err)
		}
		invalidateStockReport(rdb)
		return c.JSON(fiber.Map{"success": true})
	}
}

// POST /api/labels/:id/unallocate
func UnallocateLabelHandler(svc *Service, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid label id")
		}
		if err := svc.Unallocate(uint(id)); err != nil {
			return httpError(err)
		}
		invalidateStockReport(rdb)
		return c.JSON(fiber.Map{"success": true})
	}
}

type RestockRequest struct {
	Quantity float64 `json:"quantity"`
}

// POST /api/ingredients/:id/restock
func RestockHandler(svc *Service, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid ingredient id")
		}
		var body RestockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := svc.Restock(uint(id), body.Quantity); err != nil {
			return httpError(err)
		}
		invalidateStockReport(rdb)
		return c.JSON(fiber.Map{"success": true})
	}
}

type StockReportRow struct {
	IngredientID   uint    `json:"ingredient_id"`
	Name           string  `json:"name"`
	Unit           string  `json:"unit"`
	CurrentStock   float64 `json:"current_stock"`
	AllocatedStock float64 `json:"allocated_stock"`
	LabeledStock   float64 `json:"labeled_stock"`
	Available      float64 `json:"available"`
	BelowThreshold bool    `json:"below_threshold"`
}

// GET /api/ingredients/stock
// Read-heavy report, served from redis when available; every ledger write
// invalidates the cached copy.
func StockReportHandler(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()
		if rdb != nil {
			if cached, err := rdb.Get(ctx, stockReportCacheKey).Result(); err == nil {
				var rows []StockReportRow
				if json.Unmarshal([]byte(cached), &rows) == nil {
					return c.JSON(rows)
				}
			}
		}

		var ingredients []models.Ingredient
		if err := database.DB.Order("name ASC").Find(&ingredients).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list ingredients")
		}

		rows := make([]StockReportRow, 0, len(ingredients))
		for _, ing := range ingredients {
			rows = append(rows, StockReportRow{
				IngredientID:   ing.ID,
				Name:           ing.Name,
				Unit:           ing.Unit,
				CurrentStock:   ing.CurrentStock,
				AllocatedStock: ing.AllocatedStock,
				LabeledStock:   ing.LabeledStock,
				Available:      ing.CurrentStock - ing.AllocatedStock,
				BelowThreshold: ing.MinStockThreshold > 0 && ing.CurrentStock < ing.MinStockThreshold,
			})
		}

		if rdb != nil {
			if payload, err := json.Marshal(rows); err == nil {
				if err := rdb.Set(ctx, stockReportCacheKey, payload, stockReportCacheTTL).Err(); err != nil {
					logrus.WithError(err).Warn("could not cache stock report")
				}
			}
		}
		return c.JSON(rows)
	}
}

type MovementResponse struct {
	ID                      uint    `json:"id"`
	IngredientID            uint    `json:"ingredient_id"`
	LabelID                 *uint   `json:"label_id"`
	MovementType            string  `json:"movement_type"`
	QuantityChange          float64 `json:"quantity_change"`
	QuantityBefore          float64 `json:"quantity_before"`
	QuantityAfter           float64 `json:"quantity_after"`
	AllocatedQuantityChange float64 `json:"allocated_quantity_change"`
	CreatedAt               string  `json:"created_at"`
}

// GET /api/inventory-movements?ingredient_id=&label_id=&limit=
func ListMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.InventoryMovement{}).Order("id DESC")
		if v := c.QueryInt("ingredient_id"); v > 0 {
			q = q.Where("ingredient_id = ?", v)
		}
		if v := c.QueryInt("label_id"); v > 0 {
			q = q.Where("label_id = ?", v)
		}
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 1000 {
			limit = 100
		}

		var movements []models.InventoryMovement
		if err := q.Limit(limit).Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list movements")
		}

		resp := make([]MovementResponse, 0, len(movements))
		for _, m := range movements {
			resp = append(resp, MovementResponse{
				ID:                      m.ID,
				IngredientID:            m.IngredientID,
				LabelID:                 m.LabelID,
				MovementType:            string(m.MovementType),
				QuantityChange:          m.QuantityChange,
				QuantityBefore:          m.QuantityBefore,
				QuantityAfter:           m.QuantityAfter,
				AllocatedQuantityChange: m.AllocatedQuantityChange,
				CreatedAt:               m.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}
