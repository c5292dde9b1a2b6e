package foodcost

import (
	"fmt"
	"sort"
	"time"

	"cucina-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// itemBatchSize bounds each bill-item query to keep request sizes within
// upstream limits. It is not a concurrency knob.
const itemBatchSize = 200

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type Params struct {
	RestaurantID     uint
	PeriodStart      time.Time
	PeriodEnd        time.Time
	PeriodType       models.PeriodType
	ForceRecalculate bool
}

// sourceItem is one bill line item reduced to what aggregation needs. Revenue
// already went through the priority cascade but is NOT rounded.
type sourceItem struct {
	ProductExternalID  string
	Description        string
	Quantity           float64
	Revenue            float64
	SoldAt             time.Time
	BillExternalID     string
	BillItemExternalID string
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Aggregate computes (or returns) the food-cost aggregates of one period.
// The second return value reports whether a recomputation happened; when an
// aggregate set already exists for the exact key and no recalculation is
// forced, the stored rows come back untouched.
func (s *Service) Aggregate(p Params) ([]models.FoodCostAggregate, bool, error) {
	if err := validateParams(p); err != nil {
		return nil, false, err
	}

	if !p.ForceRecalculate {
		existing, err := s.store.AggregatesByKey(p)
		if err != nil {
			return nil, false, err
		}
		if len(existing) > 0 {
			return existing, false, nil
		}
	}

	items, err := s.loadItems(p)
	if err != nil {
		return nil, false, err
	}

	dishes, err := s.dishIndex(p.RestaurantID)
	if err != nil {
		return nil, false, err
	}

	aggregates, history := buildAggregates(p, items, dishes)

	if err := s.store.SaveWindow(p, aggregates, history); err != nil {
		return nil, false, err
	}

	logrus.WithFields(logrus.Fields{
		"restaurant_id": p.RestaurantID,
		"period_type":   p.PeriodType,
		"period_start":  p.PeriodStart.Format("2006-01-02"),
		"aggregates":    len(aggregates),
		"forced":        p.ForceRecalculate,
	}).Info("food-cost period aggregated")
	return aggregates, true, nil
}

func validateParams(p Params) error {
	if p.RestaurantID == 0 {
		return &ValidationError{Msg: "restaurantId is required"}
	}
	switch p.PeriodType {
	case models.PeriodDaily, models.PeriodWeekly, models.PeriodMonthly, models.PeriodCustom:
	default:
		return &ValidationError{Msg: fmt.Sprintf("unknown period type %q", p.PeriodType)}
	}
	if !p.PeriodStart.Before(p.PeriodEnd) {
		return &ValidationError{Msg: "periodStart must be before periodEnd"}
	}
	return nil
}

// loadItems pulls every receipt row of the window, batching bill-item queries
// by bill id chunks.
func (s *Service) loadItems(p Params) ([]sourceItem, error) {
	bills, err := s.store.BillsInWindow(p)
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, nil
	}

	billByID := make(map[uint]*models.Bill, len(bills))
	billIDs := make([]uint, 0, len(bills))
	for i := range bills {
		billByID[bills[i].ID] = &bills[i]
		billIDs = append(billIDs, bills[i].ID)
	}

	var out []sourceItem
	for start := 0; start < len(billIDs); start += itemBatchSize {
		end := start + itemBatchSize
		if end > len(billIDs) {
			end = len(billIDs)
		}
		batch, err := s.store.ItemsByBillIDs(billIDs[start:end])
		if err != nil {
			return nil, err
		}
		for _, item := range batch {
			// Items without a product reference cannot be keyed; skip.
			if item.ExternalProductID == nil || *item.ExternalProductID == "" {
				continue
			}
			bill := billByID[item.BillID]
			out = append(out, sourceItem{
				ProductExternalID:  *item.ExternalProductID,
				Description:        item.Name,
				Quantity:           item.Quantity,
				Revenue:            itemRevenue(item),
				SoldAt:             bill.ClosedAt,
				BillExternalID:     bill.ExternalID,
				BillItemExternalID: item.ExternalID,
			})
		}
	}
	return out, nil
}

func (s *Service) dishIndex(restaurantID uint) (map[string]models.Dish, error) {
	dishes, err := s.store.DishesByRestaurant(restaurantID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]models.Dish)
	for _, d := range dishes {
		if d.ExternalID != nil && *d.ExternalID != "" {
			index[*d.ExternalID] = d
		}
	}
	return index, nil
}

// itemRevenue applies the revenue priority cascade: gross total, generic
// total, amount, unit price times quantity.
func itemRevenue(item models.BillItem) float64 {
	switch {
	case item.GrossTotal != nil:
		return *item.GrossTotal
	case item.TotalPrice != nil:
		return *item.TotalPrice
	case item.Amount != nil:
		return *item.Amount
	default:
		return item.UnitPrice * item.Quantity
	}
}

// buildAggregates folds the window's items into per-product aggregates and
// detailed history rows. Running sums stay unrounded; rounding is applied
// exactly once at the end so error does not compound across many lines.
func buildAggregates(p Params, items []sourceItem, dishes map[string]models.Dish) ([]models.FoodCostAggregate, []models.SalesHistoryEntry) {
	type running struct {
		quantity    decimal.Decimal
		revenue     decimal.Decimal
		description string
	}
	sums := make(map[string]*running)
	history := make([]models.SalesHistoryEntry, 0, len(items))

	for _, item := range items {
		r, ok := sums[item.ProductExternalID]
		if !ok {
			r = &running{quantity: decimal.Zero, revenue: decimal.Zero, description: item.Description}
			sums[item.ProductExternalID] = r
		}
		r.quantity = r.quantity.Add(decimal.NewFromFloat(item.Quantity))
		r.revenue = r.revenue.Add(decimal.NewFromFloat(item.Revenue))

		var dishID *uint
		if dish, ok := dishes[item.ProductExternalID]; ok {
			id := dish.ID
			dishID = &id
		}
		history = append(history, models.SalesHistoryEntry{
			RestaurantID:       p.RestaurantID,
			ProductExternalID:  item.ProductExternalID,
			DishID:             dishID,
			Description:        item.Description,
			Quantity:           item.Quantity,
			Revenue:            roundMoney(item.Revenue),
			SoldAt:             item.SoldAt,
			BillExternalID:     item.BillExternalID,
			BillItemExternalID: item.BillItemExternalID,
		})
	}

	productIDs := make([]string, 0, len(sums))
	for id := range sums {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	aggregates := make([]models.FoodCostAggregate, 0, len(sums))
	for _, productID := range productIDs {
		r := sums[productID]
		quantity := r.quantity.Round(3)
		revenue := r.revenue.Round(2)
		average := decimal.Zero
		if !quantity.IsZero() {
			average = r.revenue.Div(r.quantity).Round(2)
		}

		agg := models.FoodCostAggregate{
			RestaurantID:      p.RestaurantID,
			ProductExternalID: productID,
			PeriodStart:       p.PeriodStart,
			PeriodEnd:         p.PeriodEnd,
			PeriodType:        p.PeriodType,
			DishName:          r.description,
			TotalQuantitySold: quantity.InexactFloat64(),
			TotalRevenue:      revenue.InexactFloat64(),
			AverageUnitPrice:  average.InexactFloat64(),
		}
		if dish, ok := dishes[productID]; ok {
			id := dish.ID
			agg.DishID = &id
			agg.DishName = dish.Name
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, history
}

func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
