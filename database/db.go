package database

import (
	"errors"
	"fmt"

	"fensterfix-backend/config"
	"fensterfix-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Order{},
		&models.Service{},
		&models.Estimate{},
		&models.EstimateItem{},
		&models.EstimateHistory{},
		&models.IdempotencyKey{},
	)
}

// FromCtx returns the *gorm.DB for the current request. Prefer the
// per-request transaction opened by middlewares.RequestTx; fall back to
// a plain session for routes outside the transaction middleware.
func FromCtx(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	return DB.Session(&gorm.Session{}), nil
}
