package main

import (
	"context"
	"errors"

	"cucina-backend/internal/auth"
	"cucina-backend/internal/config"
	"cucina-backend/internal/costing"
	"cucina-backend/internal/database"
	"cucina-backend/internal/events"
	"cucina-backend/internal/foodcost"
	"cucina-backend/internal/ledger"
	"cucina-backend/internal/models"
	"cucina-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	database.Init(cfg)
	rdb := database.NewRedisClient(cfg)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			logrus.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	ledgerService := ledger.NewService(ledger.NewGormStore(database.DB))
	pipeline := sales.NewPipeline(sales.NewGormStore(database.DB), publisher, cfg.WebhookSecret)
	foodcostService := foodcost.NewService(foodcost.NewGormStore(database.DB))

	if cfg.NATSURL != "" {
		subscriber, err := events.NewNATSSubscriber(cfg.NATSURL)
		if err != nil {
			logrus.Fatalf("failed to subscribe to nats: %v", err)
		}
		defer subscriber.Close()
		if err := subscriber.Subscribe(context.Background(), events.TopicFoodcostRecalculate,
			foodcost.RecalculationHandler(foodcostService)); err != nil {
			logrus.Fatalf("failed to subscribe to %s: %v", events.TopicFoodcostRecalculate, err)
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Signature, X-Operation",
	}))

	api := app.Group("/api")

	// Public endpoints.
	api.Post("/webhooks/sales", sales.WebhookHandler(pipeline))
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))

	// Everything below requires a valid token.
	protected := api.Group("", auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	protected.Get("/recipes/:id/cost", costing.RecipeCostHandler())

	protected.Post("/labels", ledger.CreateLabelHandler(ledgerService, rdb))
	protected.Post("/labels/recipe", ledger.CreateRecipeLabelHandler(ledgerService, rdb))
	protected.Post("/labels/:id/consume", ledger.SettleLabelHandler(ledgerService, rdb, models.MovementConsumed))
	protected.Post("/labels/:id/discard", ledger.SettleLabelHandler(ledgerService, rdb, models.MovementDiscarded))
	protected.Post("/labels/:id/unallocate", ledger.UnallocateLabelHandler(ledgerService, rdb))

	protected.Get("/ingredients/stock", ledger.StockReportHandler(rdb))
	protected.Post("/ingredients/:id/restock", ledger.RestockHandler(ledgerService, rdb))
	protected.Get("/inventory-movements", ledger.ListMovementsHandler())

	protected.Post("/foodcost/aggregate",
		auth.RequireRole(models.RoleAdmin),
		foodcost.AggregateHandler(foodcostService))

	logrus.Infof("server listening on :%s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
