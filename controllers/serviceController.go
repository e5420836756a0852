package controllers

import (
	"errors"
	"fmt"
	"strings"

	"fensterfix-backend/database"
	"fensterfix-backend/middlewares"
	"fensterfix-backend/models"
	"fensterfix-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ServiceInput struct {
	Name      string  `json:"name" validate:"required,min=1"`
	Category  string  `json:"category" validate:"required,oneof=mosquito_screen roller_blind repair"`
	UnitType  string  `json:"unit_type" validate:"required,oneof=piece meter square_meter cubic_meter linear_meter"`
	BasePrice float64 `json:"base_price" validate:"gte=0"`
}

type ServiceUpdateDTO struct {
	Name      *string  `json:"name" validate:"omitempty,min=1"`
	UnitType  *string  `json:"unit_type" validate:"omitempty,oneof=piece meter square_meter cubic_meter linear_meter"`
	BasePrice *float64 `json:"base_price" validate:"omitempty,gte=0"`
	Active    *bool    `json:"active" validate:"omitempty"`
}

// POST /api/services (admin, batch create)
func CreateServices(c *fiber.Ctx) error {
	var inputs []ServiceInput
	if err := c.BodyParser(&inputs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(inputs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no services given")
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var created []models.Service
	for i, input := range inputs {
		if err := middlewares.ValidateStruct(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid service at index %d", i))
		}

		service := models.Service{
			Name:      strings.TrimSpace(input.Name),
			Category:  models.ServiceCategory(input.Category),
			UnitType:  models.UnitType(input.UnitType),
			BasePrice: utils.Round2(input.BasePrice),
			Active:    true,
		}
		if err := db.Create(&service).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("could not create service at index %d", i))
		}
		created = append(created, service)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GET /api/services?category=
// Returns active catalog entries, optionally filtered by category.
func GetServices(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	query := db.Model(&models.Service{}).Where("active = ?", true)
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		if !models.ServiceCategory(category).Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown service category")
		}
		query = query.Where("category = ?", category)
	}

	var services []models.Service
	if err := query.Order("name").Find(&services).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{
		"services": services,
		"message":  "success",
	})
}

// PUT /api/services/:id (admin)
func UpdateService(c *fiber.Ctx) error {
	var in ServiceUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var existing models.Service
	if err := db.First(&existing, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "service not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update service")
		}
	}

	var out models.Service
	if err := db.First(&out, "id = ?", existing.Id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload service")
	}
	return c.JSON(out)
}
