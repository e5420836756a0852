package controllers

import (
	"strings"

	"fensterfix-backend/database"
	"fensterfix-backend/middlewares"
	"fensterfix-backend/models"

	"github.com/gofiber/fiber/v2"
)

type WorkerCreateDTO struct {
	FirstName string `json:"first_name" validate:"required,min=1"`
	LastName  string `json:"last_name" validate:"required,min=1"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty"`
	Password  string `json:"password" validate:"required,min=8"`
}

// POST /api/workers (admin)
func CreateWorker(c *fiber.Ctx) error {
	var in WorkerCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	worker := models.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      models.RoleWorker,
	}
	worker.SetPassword(in.Password)

	if err := db.Create(&worker).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create worker")
	}
	return c.Status(fiber.StatusCreated).JSON(worker)
}

// GET /api/workers
func GetWorkers(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var workers []models.User
	if err := db.Where("role = ?", models.RoleWorker).Order("last_name, first_name").Find(&workers).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{
		"workers": workers,
		"message": "success",
	})
}
