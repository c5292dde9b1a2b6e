package models

import "time"

type Recipe struct {
	ID           uint `gorm:"primaryKey"`
	RestaurantID uint `gorm:"index;not null"`
	Restaurant   Restaurant
	Name         string `gorm:"size:100;not null"`
	Portions     int    `gorm:"not null;default:1"`
	// A semilavorato is an intermediate preparation that can itself appear
	// as an ingredient line in another recipe.
	IsSemilavorato bool `gorm:"not null;default:false"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeIngredient is one ordered line of a recipe. It references either an
// Ingredient or, when IsSemilavorato is set, another Recipe.
type RecipeIngredient struct {
	ID       uint `gorm:"primaryKey"`
	RecipeID uint `gorm:"index;not null"`
	Position int  `gorm:"not null;default:0"`

	IngredientID *uint
	Ingredient   *Ingredient
	// Nested semilavorato recipe, set only when IsSemilavorato is true.
	SemilavoratoID *uint
	IsSemilavorato bool `gorm:"not null;default:false"`

	Quantity float64 `gorm:"not null"`
	// Unit used by this line; may differ from the ingredient's base unit.
	// Empty means the ingredient's own unit.
	Unit string `gorm:"size:20"`
	// Yield specific to this use of the ingredient, overriding the
	// ingredient's own yield for this recipe only.
	RecipeYieldPercentage *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}
