package models

import "time"

type LabelType string

const (
	LabelTypeIngredient   LabelType = "ingredient"
	LabelTypeSemilavorato LabelType = "semilavorato"
	LabelTypeLavorato     LabelType = "lavorato"
	LabelTypeDefrosted    LabelType = "defrosted"
	LabelTypeRecipe       LabelType = "recipe"
)

type LabelStatus string

const (
	LabelStatusActive    LabelStatus = "active"
	LabelStatusConsumed  LabelStatus = "consumed"
	LabelStatusDiscarded LabelStatus = "discarded"
)

// Label is one physical printed unit of production. Its stock effects are
// driven entirely through the inventory ledger.
type Label struct {
	ID           uint   `gorm:"primaryKey"`
	Code         string `gorm:"size:36;uniqueIndex;not null"` // uuid printed on the label
	RestaurantID uint   `gorm:"index;not null"`
	Type         LabelType   `gorm:"size:20;not null"`
	Status       LabelStatus `gorm:"size:20;not null;default:active"`

	// Set depending on type: ingredient/defrosted labels point at an
	// ingredient, recipe/semilavorato/lavorato labels at a recipe.
	IngredientID *uint
	RecipeID     *uint
	Portions     *int

	CreatedAt time.Time
	UpdatedAt time.Time
}
