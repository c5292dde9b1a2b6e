package models

import "time"

type Restaurant struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Address   string `gorm:"size:255"`
	Phone     string `gorm:"size:50"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User
}

// SalesPointMapping links an external point-of-sale identifier (issued by the
// cash register provider) to one of our restaurants.
type SalesPointMapping struct {
	ID           uint   `gorm:"primaryKey"`
	SalesPointID string `gorm:"size:100;uniqueIndex;not null"`
	RestaurantID uint   `gorm:"index;not null"`
	Restaurant   Restaurant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
