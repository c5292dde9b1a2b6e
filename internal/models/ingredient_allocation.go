package models

import "time"

// IngredientAllocation is the current committed quantity of one ingredient
// toward one label. One row per (ingredient, label); created on allocation,
// deleted when the label is consumed or discarded.
type IngredientAllocation struct {
	ID           uint    `gorm:"primaryKey"`
	IngredientID uint    `gorm:"not null;index:uniq_ingredient_label,unique"`
	LabelID      uint    `gorm:"not null;index:uniq_ingredient_label,unique"`
	Quantity     float64 `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
