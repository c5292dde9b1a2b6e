package models

import "time"

type MovementType string

const (
	MovementAllocated   MovementType = "allocated"
	MovementConsumed    MovementType = "consumed"
	MovementDiscarded   MovementType = "discarded"
	MovementRestocked   MovementType = "restocked"
	MovementUnallocated MovementType = "unallocated"
)

// InventoryMovement is one append-only ledger row. Rows are only created by
// ledger operations and never updated or deleted.
type InventoryMovement struct {
	ID           uint `gorm:"primaryKey"`
	IngredientID uint `gorm:"index;not null"`
	LabelID      *uint `gorm:"index"`
	MovementType MovementType `gorm:"size:20;not null"`

	// Change to current_stock and its before/after snapshots.
	QuantityChange float64 `gorm:"not null"`
	QuantityBefore float64 `gorm:"not null"`
	QuantityAfter  float64 `gorm:"not null"`
	// Change to allocated_stock.
	AllocatedQuantityChange float64 `gorm:"not null"`

	CreatedAt time.Time `gorm:"index"`
}
