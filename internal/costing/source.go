package costing

import (
	"cucina-backend/internal/models"

	"gorm.io/gorm"
)

// GormRecipeSource loads recipes with their lines and ingredients preloaded.
type GormRecipeSource struct {
	DB *gorm.DB
}

func (s *GormRecipeSource) RecipeByID(id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.DB.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
