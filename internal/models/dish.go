package models

import "time"

// Dish is a sellable menu item. ExternalID is the product id used by the
// point-of-sale provider, when known.
type Dish struct {
	ID           uint `gorm:"primaryKey"`
	RestaurantID uint `gorm:"index;not null"`
	Name         string  `gorm:"size:150;not null"`
	ExternalID   *string `gorm:"size:100;index"`
	RecipeID     *uint
	SellingPrice float64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
