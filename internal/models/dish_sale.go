package models

import "time"

// DishSale links an ingested bill item to the internal dish it was matched
// against. Unmatched items produce no row, only an ingestion warning.
type DishSale struct {
	ID           uint `gorm:"primaryKey"`
	RestaurantID uint `gorm:"index;not null"`
	BillID       uint `gorm:"index;not null"`
	BillItemID   uint `gorm:"index;not null"`
	DishID       uint `gorm:"index;not null"`
	Quantity     float64 `gorm:"not null"`
	Revenue      float64 `gorm:"not null"`
	SoldAt       time.Time `gorm:"index;not null"`
	CreatedAt    time.Time
}
