package models

import "time"

type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
	PeriodCustom  PeriodType = "custom"
)

// FoodCostAggregate is the period-keyed summary of quantity sold and revenue
// per product. The unique key makes recomputation idempotent: an existing
// aggregate for the exact key is returned untouched unless a forced
// recalculation replaces the whole window.
type FoodCostAggregate struct {
	ID                uint   `gorm:"primaryKey"`
	RestaurantID      uint   `gorm:"not null;index:uniq_foodcost_period,unique"`
	ProductExternalID string `gorm:"size:100;not null;index:uniq_foodcost_period,unique"`
	PeriodStart       time.Time  `gorm:"not null;index:uniq_foodcost_period,unique"`
	PeriodEnd         time.Time  `gorm:"not null;index:uniq_foodcost_period,unique"`
	PeriodType        PeriodType `gorm:"size:20;not null;index:uniq_foodcost_period,unique"`

	DishID   *uint
	DishName string `gorm:"size:150"` // internal dish name, or the raw POS description

	TotalQuantitySold float64 `gorm:"not null"` // rounded to 3 decimals
	TotalRevenue      float64 `gorm:"not null"` // rounded to 2 decimals
	AverageUnitPrice  float64 `gorm:"not null"` // rounded to 2 decimals

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SalesHistoryEntry is one detailed row per original bill line item, kept so
// a period can later be re-aggregated at finer grain.
type SalesHistoryEntry struct {
	ID                 uint   `gorm:"primaryKey"`
	RestaurantID       uint   `gorm:"index;not null"`
	ProductExternalID  string `gorm:"size:100;index;not null"`
	DishID             *uint
	Description        string  `gorm:"size:150"`
	Quantity           float64 `gorm:"not null"`
	Revenue            float64 `gorm:"not null"`
	SoldAt             time.Time `gorm:"index;not null"`
	BillExternalID     string    `gorm:"size:100"`
	BillItemExternalID string    `gorm:"size:100"`
	CreatedAt          time.Time
}
