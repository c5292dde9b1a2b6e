package models

import "time"

// Bill is one ingested point-of-sale transaction. Write-once: rows are never
// updated after ingestion.
type Bill struct {
	ID           uint   `gorm:"primaryKey"`
	RestaurantID uint   `gorm:"index;not null"`
	ExternalID   string `gorm:"size:100;index;not null"` // id issued by the POS provider
	BillNumber   *string `gorm:"size:50"`
	ClosedAt     time.Time `gorm:"index;not null"`
	TotalAmount  float64   `gorm:"not null"`

	Items []BillItem `gorm:"foreignKey:BillID"`

	CreatedAt time.Time
}

// BillItem is one receipt row of a bill. The three optional revenue fields
// mirror whatever the POS payload carried; the aggregation service picks the
// first one present.
type BillItem struct {
	ID         uint   `gorm:"primaryKey"`
	BillID     uint   `gorm:"index;not null"`
	ExternalID string `gorm:"size:100;not null"`
	Name       string `gorm:"size:150;not null"`
	Quantity   float64 `gorm:"not null"`
	UnitPrice  float64 `gorm:"not null"`

	GrossTotal *float64
	TotalPrice *float64
	Amount     *float64

	ExternalProductID *string `gorm:"size:100;index"`

	CreatedAt time.Time
}
