package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cucina-backend/internal/events"
	"cucina-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Operations the webhook processes; anything else is acknowledged as a no-op.
var billOperations = map[string]bool{
	"bill.closed":    true,
	"receipt.closed": true,
}

type SignatureInvalidError struct{}

func (e *SignatureInvalidError) Error() string { return "webhook signature mismatch" }

type PayloadError struct {
	Msg string
}

func (e *PayloadError) Error() string { return "malformed payload: " + e.Msg }

type UnmappedRestaurantError struct {
	SalesPointID string
}

func (e *UnmappedRestaurantError) Error() string {
	return fmt.Sprintf("sales point %q is not mapped to a restaurant", e.SalesPointID)
}

// errDuplicateBill aborts the ingestion transaction when the dedup marker
// insert loses a race against a concurrent delivery of the same bill.
var errDuplicateBill = errors.New("bill already processed concurrently")

type billPayload struct {
	ID           string            `json:"id"`
	SalesPointID string            `json:"salesPointId"`
	ClosedAt     time.Time         `json:"closedAt"`
	TotalAmount  float64           `json:"totalAmount"`
	BillNumber   *string           `json:"billNumber"`
	Items        []billItemPayload `json:"items"`
}

type billItemPayload struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Quantity   float64  `json:"quantity"`
	UnitPrice  float64  `json:"unitPrice"`
	TotalPrice *float64 `json:"totalPrice"`
	GrossTotal *float64 `json:"grossTotal"`
	Amount     *float64 `json:"amount"`
	ProductID  *string  `json:"productId"`
}

type Result struct {
	Success          bool
	BillID           string
	Warnings         []string
	AlreadyProcessed bool
	Ignored          bool
}

// Pipeline ingests point-of-sale webhook deliveries:
// received -> signature-verified -> deduplicated -> ingested.
type Pipeline struct {
	store     TxStore
	publisher events.Publisher
	secret    string
}

func NewPipeline(store TxStore, publisher events.Publisher, secret string) *Pipeline {
	return &Pipeline{store: store, publisher: publisher, secret: secret}
}

// Process runs one delivery through the pipeline. The raw body is verified
// before any parsing. Replays of an already-processed bill short-circuit with
// success and write nothing.
func (p *Pipeline) Process(raw []byte, signature, operation string) (*Result, error) {
	if !ValidSignature(raw, p.secret, signature) {
		return nil, &SignatureInvalidError{}
	}

	if !billOperations[operation] {
		logrus.WithField("operation", operation).Debug("ignoring non-bill webhook operation")
		return &Result{Success: true, Ignored: true}, nil
	}

	var payload billPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &PayloadError{Msg: err.Error()}
	}
	if payload.ID == "" {
		return nil, &PayloadError{Msg: "missing bill id"}
	}
	if payload.SalesPointID == "" {
		return nil, &PayloadError{Msg: "missing sales point id"}
	}
	if payload.ClosedAt.IsZero() {
		payload.ClosedAt = time.Now()
	}

	mapping, err := p.store.MappingBySalesPoint(payload.SalesPointID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &UnmappedRestaurantError{SalesPointID: payload.SalesPointID}
	}
	if err != nil {
		return nil, err
	}

	result := &Result{Success: true, BillID: payload.ID}

	err = p.store.Transact(func(st Store) error {
		// Dedup check and marker insert share the transaction so concurrent
		// deliveries of the same bill cannot both ingest it.
		processed, err := st.BillProcessed(mapping.RestaurantID, payload.ID)
		if err != nil {
			return err
		}
		if processed {
			result.AlreadyProcessed = true
			return nil
		}

		bill := models.Bill{
			RestaurantID: mapping.RestaurantID,
			ExternalID:   payload.ID,
			BillNumber:   payload.BillNumber,
			ClosedAt:     payload.ClosedAt,
			TotalAmount:  payload.TotalAmount,
		}
		if err := st.CreateBill(&bill); err != nil {
			return err
		}

		dishes, err := st.DishesByRestaurant(mapping.RestaurantID)
		if err != nil {
			return err
		}

		itemIDs := make(models.StringArray, 0, len(payload.Items))
		for _, item := range payload.Items {
			externalProductID := ""
			if item.ProductID != nil {
				externalProductID = *item.ProductID
			}
			row := models.BillItem{
				BillID:            bill.ID,
				ExternalID:        item.ID,
				Name:              item.Name,
				Quantity:          item.Quantity,
				UnitPrice:         item.UnitPrice,
				TotalPrice:        item.TotalPrice,
				GrossTotal:        item.GrossTotal,
				Amount:            item.Amount,
				ExternalProductID: item.ProductID,
			}
			if err := st.CreateBillItem(&row); err != nil {
				return err
			}
			itemIDs = append(itemIDs, item.ID)

			dish := MatchDish(dishes, externalProductID, item.Name)
			if dish == nil {
				// Non-fatal: the bill is still marked processed.
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("item %q (%s) could not be mapped to a dish", item.Name, item.ID))
				continue
			}
			sale := models.DishSale{
				RestaurantID: mapping.RestaurantID,
				BillID:       bill.ID,
				BillItemID:   row.ID,
				DishID:       dish.ID,
				Quantity:     item.Quantity,
				Revenue:      itemRevenue(item),
				SoldAt:       payload.ClosedAt,
			}
			if err := st.CreateDishSale(&sale); err != nil {
				return err
			}
		}

		err = st.MarkProcessed(&models.ProcessedBill{
			RestaurantID:   mapping.RestaurantID,
			ExternalBillID: payload.ID,
			ItemIDs:        itemIDs,
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent delivery won the unique index. Roll this one back
			// and acknowledge it as a replay.
			return errDuplicateBill
		}
		return err
	})
	if errors.Is(err, errDuplicateBill) {
		result.AlreadyProcessed = true
		result.Warnings = nil
		err = nil
	}
	if err != nil {
		return nil, err
	}

	if result.AlreadyProcessed {
		logrus.WithFields(logrus.Fields{
			"bill_id":       payload.ID,
			"restaurant_id": mapping.RestaurantID,
		}).Info("bill already processed, replay acknowledged")
		return result, nil
	}

	p.signalRecalculation(mapping.RestaurantID, payload.ClosedAt)

	logrus.WithFields(logrus.Fields{
		"bill_id":       payload.ID,
		"restaurant_id": mapping.RestaurantID,
		"items":         len(payload.Items),
		"warnings":      len(result.Warnings),
	}).Info("bill ingested")
	return result, nil
}

// itemRevenue picks the revenue of a line by priority: gross total, generic
// total, amount, finally unit price times quantity.
func itemRevenue(item billItemPayload) float64 {
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

// signalRecalculation fires the asynchronous recalculation signal. It is not
// awaited and failures are only logged.
func (p *Pipeline) signalRecalculation(restaurantID uint, closedAt time.Time) {
	if p.publisher == nil {
		return
	}
	msg, err := json.Marshal(events.RecalculationRequested{
		RestaurantID: restaurantID,
		Date:         closedAt.Format("2006-01-02"),
	})
	if err != nil {
		return
	}
	go func() {
		if err := p.publisher.Publish(context.Background(), events.TopicFoodcostRecalculate, msg); err != nil {
			logrus.WithError(err).Warn("could not publish recalculation signal")
		}
	}()
}
