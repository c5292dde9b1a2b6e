package foodcost

import (
	"cucina-backend/internal/models"

	"gorm.io/gorm"
)

// Store is the persistence surface of the aggregation service.
type Store interface {
	AggregatesByKey(p Params) ([]models.FoodCostAggregate, error)
	BillsInWindow(p Params) ([]models.Bill, error)
	ItemsByBillIDs(billIDs []uint) ([]models.BillItem, error)
	DishesByRestaurant(restaurantID uint) ([]models.Dish, error)
	// SaveWindow persists one computed window atomically. When the params force
	// a recalculation, the window's previous aggregates and history rows are
	// dropped in the same transaction.
	SaveWindow(p Params, aggregates []models.FoodCostAggregate, history []models.SalesHistoryEntry) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) AggregatesByKey(p Params) ([]models.FoodCostAggregate, error) {
	var out []models.FoodCostAggregate
	err := s.db.
		Where("restaurant_id = ? AND period_start = ? AND period_end = ? AND period_type = ?",
			p.RestaurantID, p.PeriodStart, p.PeriodEnd, p.PeriodType).
		Order("product_external_id ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) BillsInWindow(p Params) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.db.
		Where("restaurant_id = ? AND closed_at >= ? AND closed_at <= ?",
			p.RestaurantID, p.PeriodStart, p.PeriodEnd).
		Order("id ASC").
		Find(&bills).Error
	return bills, err
}

func (s *GormStore) ItemsByBillIDs(billIDs []uint) ([]models.BillItem, error) {
	var items []models.BillItem
	err := s.db.Where("bill_id IN ?", billIDs).Order("id ASC").Find(&items).Error
	return items, err
}

func (s *GormStore) DishesByRestaurant(restaurantID uint) ([]models.Dish, error) {
	var dishes []models.Dish
	err := s.db.Where("restaurant_id = ?", restaurantID).Find(&dishes).Error
	return dishes, err
}

func (s *GormStore) SaveWindow(p Params, aggregates []models.FoodCostAggregate, history []models.SalesHistoryEntry) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if p.ForceRecalculate {
			// Replace, not merge: drop the window's aggregates and detailed
			// rows before inserting the freshly computed set.
			if err := tx.
				Where("restaurant_id = ? AND period_start = ? AND period_end = ? AND period_type = ?",
					p.RestaurantID, p.PeriodStart, p.PeriodEnd, p.PeriodType).
				Delete(&models.FoodCostAggregate{}).Error; err != nil {
				return err
			}
			if err := tx.
				Where("restaurant_id = ? AND sold_at >= ? AND sold_at <= ?",
					p.RestaurantID, p.PeriodStart, p.PeriodEnd).
				Delete(&models.SalesHistoryEntry{}).Error; err != nil {
				return err
			}
		}
		for i := range aggregates {
			if err := tx.Create(&aggregates[i]).Error; err != nil {
				return err
			}
		}
		for i := range history {
			if err := tx.Create(&history[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
