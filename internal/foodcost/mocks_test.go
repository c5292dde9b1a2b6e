package foodcost

import "cucina-backend/internal/models"

// fakeStore is an in-memory Store for service tests. saveCalls counts write
// attempts so idempotency assertions can prove no extra writes happened.
type fakeStore struct {
	bills  []models.Bill
	items  []models.BillItem
	dishes []models.Dish

	aggregates []models.FoodCostAggregate
	history    []models.SalesHistoryEntry

	saveCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) AggregatesByKey(p Params) ([]models.FoodCostAggregate, error) {
	var out []models.FoodCostAggregate
	for _, a := range s.aggregates {
		if a.RestaurantID == p.RestaurantID &&
			a.PeriodStart.Equal(p.PeriodStart) && a.PeriodEnd.Equal(p.PeriodEnd) &&
			a.PeriodType == p.PeriodType {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) BillsInWindow(p Params) ([]models.Bill, error) {
	var out []models.Bill
	for _, b := range s.bills {
		if b.RestaurantID == p.RestaurantID &&
			!b.ClosedAt.Before(p.PeriodStart) && !b.ClosedAt.After(p.PeriodEnd) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) ItemsByBillIDs(billIDs []uint) ([]models.BillItem, error) {
	var out []models.BillItem
	for _, item := range s.items {
		for _, id := range billIDs {
			if item.BillID == id {
				out = append(out, item)
				break
			}
		}
	}
	return out, nil
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

func (s *fakeStore) SaveWindow(p Params, aggregates []models.FoodCostAggregate, history []models.SalesHistoryEntry) error {
	s.saveCalls++
	if p.ForceRecalculate {
		kept := s.aggregates[:0]
		for _, a := range s.aggregates {
			if a.RestaurantID == p.RestaurantID &&
				a.PeriodStart.Equal(p.PeriodStart) && a.PeriodEnd.Equal(p.PeriodEnd) &&
				a.PeriodType == p.PeriodType {
				continue
			}
			kept = append(kept, a)
		}
		s.aggregates = kept

		keptHistory := s.history[:0]
		for _, h := range s.history {
			if h.RestaurantID == p.RestaurantID &&
				!h.SoldAt.Before(p.PeriodStart) && !h.SoldAt.After(p.PeriodEnd) {
				continue
			}
			keptHistory = append(keptHistory, h)
		}
		s.history = keptHistory
	}
	s.aggregates = append(s.aggregates, aggregates...)
	s.history = append(s.history, history...)
	return nil
}
