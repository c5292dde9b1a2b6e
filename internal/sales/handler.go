package sales

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	HeaderSignature = "X-Signature"
	HeaderOperation = "X-Operation"
)

type WebhookResponse struct {
	Success  bool     `json:"success"`
	BillID   string   `json:"billId,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// POST /api/webhooks/sales
// Public route: the HMAC signature is its authentication.
func WebhookHandler(pipeline *Pipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Body()
		signature := c.Get(HeaderSignature)
		operation := c.Get(HeaderOperation)

		result, err := pipeline.Process(raw, signature, operation)
		if err != nil {
			var sigErr *SignatureInvalidError
			var payloadErr *PayloadError
			var unmapped *UnmappedRestaurantError
			switch {
			case errors.As(err, &sigErr):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid signature",
				})
			case errors.As(err, &payloadErr):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": payloadErr.Error(),
				})
			case errors.As(err, &unmapped):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": unmapped.Error(),
				})
			default:
				logrus.WithError(err).Error("webhook ingestion failed")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "ingestion failed",
					"details": err.Error(),
				})
			}
		}

		return c.JSON(WebhookResponse{
			Success:  result.Success,
			BillID:   result.BillID,
			Warnings: result.Warnings,
		})
	}
}
