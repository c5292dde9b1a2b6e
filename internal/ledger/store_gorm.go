package ledger

import (
	"errors"

	"cucina-backend/internal/models"

	"gorm.io/gorm"
)

// GormStore is the Postgres-backed Store. Transact delegates to
// gorm's transaction wrapper.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transact(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) IngredientByID(id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.First(&ing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

func (s *GormStore) SaveIngredient(ing *models.Ingredient) error {
	return s.db.Save(ing).Error
}

func (s *GormStore) LabelByID(id uint) (*models.Label, error) {
	var label models.Label
	if err := s.db.First(&label, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

func (s *GormStore) SaveLabel(label *models.Label) error {
	return s.db.Save(label).Error
}

func (s *GormStore) AllocationsByLabel(labelID uint) ([]models.IngredientAllocation, error) {
	var allocations []models.IngredientAllocation
	err := s.db.Where("label_id = ?", labelID).Order("id ASC").Find(&allocations).Error
	return allocations, err
}

func (s *GormStore) UpsertAllocation(ingredientID, labelID uint, quantity float64) error {
	var existing models.IngredientAllocation
	err := s.db.Where("ingredient_id = ? AND label_id = ?", ingredientID, labelID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&models.IngredientAllocation{
			IngredientID: ingredientID,
			LabelID:      labelID,
			Quantity:     quantity,
		}).Error
	}
	if err != nil {
		return err
	}
	existing.Quantity = quantity
	return s.db.Save(&existing).Error
}

func (s *GormStore) DeleteAllocationsByLabel(labelID uint) error {
	return s.db.Where("label_id = ?", labelID).Delete(&models.IngredientAllocation{}).Error
}

func (s *GormStore) AppendMovement(m *models.InventoryMovement) error {
	return s.db.Create(m).Error
}

func (s *GormStore) RecipeWithIngredients(recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
