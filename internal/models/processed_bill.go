package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringArray stores a JSON-encoded list of ids in a text column.
type StringArray []string

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("failed to scan StringArray: %v", value)
	}
}

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// ProcessedBill is the idempotency marker for webhook ingestion. The unique
// (restaurant_id, external_bill_id) key is the sole dedup mechanism; it is
// inserted in the same transaction as the bill rows.
type ProcessedBill struct {
	ID             uint   `gorm:"primaryKey"`
	RestaurantID   uint   `gorm:"not null;index:uniq_processed_bill,unique"`
	ExternalBillID string `gorm:"size:100;not null;index:uniq_processed_bill,unique"`
	// External ids of the line items that were ingested with the bill.
	ItemIDs   StringArray `gorm:"type:text"`
	CreatedAt time.Time
}
