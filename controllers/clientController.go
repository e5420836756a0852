package controllers

import (
	"errors"
	"strings"

	"fensterfix-backend/database"
	"fensterfix-backend/middlewares"
	"fensterfix-backend/models"
	"fensterfix-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ClientCreateDTO struct {
	Name    string `json:"name" validate:"required,min=1"`
	Phone   string `json:"phone" validate:"required,min=3"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"required,min=1"`
	City    string `json:"city" validate:"omitempty"`
	Zip     string `json:"zip" validate:"omitempty"`
	Notes   string `json:"notes" validate:"omitempty"`
}

type ClientUpdateDTO struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Phone   *string `json:"phone" validate:"omitempty,min=3"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Address *string `json:"address" validate:"omitempty,min=1"`
	City    *string `json:"city" validate:"omitempty"`
	Zip     *string `json:"zip" validate:"omitempty"`
	Notes   *string `json:"notes" validate:"omitempty"`
}

// POST /api/client
func CreateClient(c *fiber.Ctx) error {
	var in ClientCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	client := models.Client{
		Name:    in.Name,
		Phone:   in.Phone,
		Email:   in.Email,
		Address: in.Address,
		City:    in.City,
		Zip:     in.Zip,
		Notes:   in.Notes,
	}
	if err := db.Create(&client).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create client")
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

// GET /api/clients?q=
func GetClients(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	query := db.Model(&models.Client{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}

	var clients []models.Client
	if err := query.Order("id desc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{
		"clients": clients,
		"message": "success",
	})
}

// GET /api/client/:id
func GetClient(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var client models.Client
	if err := db.First(&client, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(client)
}

// PUT /api/client/:id
func UpdateClient(c *fiber.Ctx) error {
	var in ClientUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var existing models.Client
	if err := db.First(&existing, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update client")
		}
	}

	var out models.Client
	if err := db.First(&out, "id = ?", existing.Id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload client")
	}
	return c.JSON(out)
}
