package models

import "time"

// Ingredient is a purchasable raw material. Stock counters are only ever
// mutated by the inventory ledger, never by handlers directly.
//
// Invariant: CurrentStock >= AllocatedStock >= 0, LabeledStock <= CurrentStock.
type Ingredient struct {
	ID           uint `gorm:"primaryKey"`
	RestaurantID uint `gorm:"index;not null"`
	Restaurant   Restaurant
	Name         string `gorm:"size:100;not null"`
	Unit         string `gorm:"size:20;not null"` // base unit: g, kg, ml, l, pz...

	CostPerUnit          float64  `gorm:"not null"`             // purchase price per base unit
	YieldPercentage      float64  `gorm:"not null;default:100"` // usable fraction after trim/waste, 1-100
	EffectiveCostPerUnit *float64 // yield-adjusted unit cost, when precomputed

	CurrentStock      float64 `gorm:"not null;default:0"`
	AllocatedStock    float64 `gorm:"not null;default:0"`
	LabeledStock      float64 `gorm:"not null;default:0"`
	MinStockThreshold float64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
