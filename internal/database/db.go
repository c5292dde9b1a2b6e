package database

import (
	"cucina-backend/internal/config"
	"cucina-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	// TranslateError surfaces unique-index violations as gorm.ErrDuplicatedKey,
	// which the ingestion pipeline relies on for replay detection.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Restaurant{},
		&models.SalesPointMapping{},
		&models.User{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Label{},
		&models.IngredientAllocation{},
		&models.InventoryMovement{},
		&models.Dish{},
		&models.Bill{},
		&models.BillItem{},
		&models.DishSale{},
		&models.ProcessedBill{},
		&models.FoodCostAggregate{},
		&models.SalesHistoryEntry{},
	); err != nil {
		logrus.Fatalf("failed to run migrations: %v", err)
	}

	DB = db
	logrus.Info("database connection established")
}
