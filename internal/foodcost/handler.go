package foodcost

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cucina-backend/internal/events"
	"cucina-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AggregateRequest struct {
	RestaurantID     uint   `json:"restaurantId"`
	PeriodStart      string `json:"periodStart"` // "2006-01-02"
	PeriodEnd        string `json:"periodEnd"`
	PeriodType       string `json:"periodType"`
	ForceRecalculate bool   `json:"forceRecalculate"`
}

type AggregateRow struct {
	ProductExternalID string  `json:"product_external_id"`
	DishID            *uint   `json:"dish_id"`
	DishName          string  `json:"dish_name"`
	TotalQuantitySold float64 `json:"total_quantity_sold"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageUnitPrice  float64 `json:"average_unit_price"`
}

type AggregateResponse struct {
	Success bool           `json:"success"`
	Data    []AggregateRow `json:"data"`
	Message string         `json:"message"`
}

// POST /api/foodcost/aggregate
func AggregateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AggregateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		start, err := time.Parse("2006-01-02", body.PeriodStart)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "periodStart must be 'YYYY-MM-DD'")
		}
		end, err := time.Parse("2006-01-02", body.PeriodEnd)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "periodEnd must be 'YYYY-MM-DD'")
		}
		// The end date is inclusive: extend it to the last instant of the day.
		end = end.Add(24*time.Hour - time.Nanosecond)

		aggregates, recalculated, err := svc.Aggregate(Params{
			RestaurantID:     body.RestaurantID,
			PeriodStart:      start,
			PeriodEnd:        end,
			PeriodType:       models.PeriodType(body.PeriodType),
			ForceRecalculate: body.ForceRecalculate,
		})
		if err != nil {
			var invalid *ValidationError
			if errors.As(err, &invalid) {
				return fiber.NewError(fiber.StatusBadRequest, invalid.Error())
			}
			logrus.WithError(err).Error("food-cost aggregation failed")
			return fiber.NewError(fiber.StatusInternalServerError, "aggregation failed")
		}

		rows := make([]AggregateRow, 0, len(aggregates))
		for _, a := range aggregates {
			rows = append(rows, AggregateRow{
				ProductExternalID: a.ProductExternalID,
				DishID:            a.DishID,
				DishName:          a.DishName,
				TotalQuantitySold: a.TotalQuantitySold,
				TotalRevenue:      a.TotalRevenue,
				AverageUnitPrice:  a.AverageUnitPrice,
			})
		}

		message := "returned existing aggregates"
		if recalculated {
			message = "period aggregated"
		}
		return c.JSON(AggregateResponse{Success: true, Data: rows, Message: message})
	}
}

// RecalculationHandler reacts to recalculation signals published after sales
// ingestion by rebuilding that day's aggregates. Best effort: errors are
// logged and the message is dropped.
func RecalculationHandler(svc *Service) events.HandlerFunc {
	return func(ctx context.Context, msg []byte) error {
		var signal events.RecalculationRequested
		if err := json.Unmarshal(msg, &signal); err != nil {
			logrus.WithError(err).Warn("invalid recalculation signal")
			return nil
		}
		day, err := time.Parse("2006-01-02", signal.Date)
		if err != nil {
			logrus.WithError(err).Warn("invalid recalculation signal date")
			return nil
		}

		_, _, err = svc.Aggregate(Params{
			RestaurantID:     signal.RestaurantID,
			PeriodStart:      day,
			PeriodEnd:        day.Add(24*time.Hour - time.Nanosecond),
			PeriodType:       models.PeriodDaily,
			ForceRecalculate: true,
		})
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"restaurant_id": signal.RestaurantID,
				"date":          signal.Date,
			}).Warn("signalled recalculation failed")
		}
		return nil
	}
}
