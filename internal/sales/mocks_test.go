package sales

import (
	"cucina-backend/internal/models"

	"gorm.io/gorm"
)

// fakeStore is an in-memory Store for pipeline tests. Transact snapshots the
// written rows and restores them when the function fails, mirroring a
// rolled-back transaction.
type fakeStore struct {
	mappings map[string]models.SalesPointMapping
	dishes   []models.Dish

	bills     []models.Bill
	items     []models.BillItem
	sales     []models.DishSale
	processed []models.ProcessedBill

	// When set, MarkProcessed fails once with gorm.ErrDuplicatedKey, the way
	// the unique index rejects the loser of two concurrent deliveries.
	duplicateOnMark bool

	nextBillID uint
	nextItemID uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		mappings:   map[string]models.SalesPointMapping{},
		nextBillID: 1,
		nextItemID: 1,
	}
}

func (s *fakeStore) Transact(fn func(Store) error) error {
	bills := append([]models.Bill(nil), s.bills...)
	items := append([]models.BillItem(nil), s.items...)
	sales := append([]models.DishSale(nil), s.sales...)
	processed := append([]models.ProcessedBill(nil), s.processed...)

	if err := fn(s); err != nil {
		s.bills, s.items, s.sales, s.processed = bills, items, sales, processed
		return err
	}
	return nil
}

func (s *fakeStore) MappingBySalesPoint(salesPointID string) (*models.SalesPointMapping, error) {
	mapping, ok := s.mappings[salesPointID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &mapping, nil
}

func (s *fakeStore) BillProcessed(restaurantID uint, externalBillID string) (bool, error) {
	for _, p := range s.processed {
		if p.RestaurantID == restaurantID && p.ExternalBillID == externalBillID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) DishesByRestaurant(restaurantID uint) ([]models.Dish, error) {
	var out []models.Dish
	for _, d := range s.dishes {
		if d.RestaurantID == restaurantID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateBill(bill *models.Bill) error {
	bill.ID = s.nextBillID
	s.nextBillID++
	s.bills = append(s.bills, *bill)
	return nil
}

func (s *fakeStore) CreateBillItem(item *models.BillItem) error {
	item.ID = s.nextItemID
	s.nextItemID++
	s.items = append(s.items, *item)
	return nil
}

func (s *fakeStore) CreateDishSale(sale *models.DishSale) error {
	sale.ID = uint(len(s.sales) + 1)
	s.sales = append(s.sales, *sale)
	return nil
}

func (s *fakeStore) MarkProcessed(marker *models.ProcessedBill) error {
	if s.duplicateOnMark {
		s.duplicateOnMark = false
		return gorm.ErrDuplicatedKey
	}
	for _, p := range s.processed {
		if p.RestaurantID == marker.RestaurantID && p.ExternalBillID == marker.ExternalBillID {
			return gorm.ErrDuplicatedKey
		}
	}
	marker.ID = uint(len(s.processed) + 1)
	s.processed = append(s.processed, *marker)
	return nil
}
