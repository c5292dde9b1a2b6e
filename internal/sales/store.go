package sales

import (
	"cucina-backend/internal/models"

	"gorm.io/gorm"
)

// Store is the persistence surface of the ingestion pipeline.
type Store interface {
	MappingBySalesPoint(salesPointID string) (*models.SalesPointMapping, error)
	BillProcessed(restaurantID uint, externalBillID string) (bool, error)
	DishesByRestaurant(restaurantID uint) ([]models.Dish, error)
	CreateBill(bill *models.Bill) error
	CreateBillItem(item *models.BillItem) error
	CreateDishSale(sale *models.DishSale) error
	MarkProcessed(marker *models.ProcessedBill) error
}

// TxStore runs a batch of Store operations atomically.
type TxStore interface {
	Store
	Transact(fn func(Store) error) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transact(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) MappingBySalesPoint(salesPointID string) (*models.SalesPointMapping, error) {
	var mapping models.SalesPointMapping
	if err := s.db.Where("sales_point_id = ?", salesPointID).First(&mapping).Error; err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (s *GormStore) BillProcessed(restaurantID uint, externalBillID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ProcessedBill{}).
		Where("restaurant_id = ? AND external_bill_id = ?", restaurantID, externalBillID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) DishesByRestaurant(restaurantID uint) ([]models.Dish, error) {
	var dishes []models.Dish
	err := s.db.Where("restaurant_id = ?", restaurantID).Find(&dishes).Error
	return dishes, err
}

func (s *GormStore) CreateBill(bill *models.Bill) error {
	return s.db.Create(bill).Error
}

func (s *GormStore) CreateBillItem(item *models.BillItem) error {
	return s.db.Create(item).Error
}

func (s *GormStore) CreateDishSale(sale *models.DishSale) error {
	return s.db.Create(sale).Error
}

func (s *GormStore) MarkProcessed(marker *models.ProcessedBill) error {
	return s.db.Create(marker).Error
}
