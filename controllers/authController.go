package controllers

import (
	"net/mail"
	"strings"
	"time"

	"fensterfix-backend/database"
	"fensterfix-backend/middlewares"
	"fensterfix-backend/models"

	"github.com/gofiber/fiber/v2"
)

type RegisterDTO struct {
	FirstName       string `json:"first_name" validate:"required,min=1"`
	LastName        string `json:"last_name" validate:"required,min=1"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/registration
// Open only while no users exist: the first registration creates the admin
// account. Worker accounts are created by the admin via POST /api/workers.
func Register(c *fiber.Ctx) error {
	var in RegisterDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	var count int64
	if err := database.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusForbidden, "registration is closed; ask an administrator to create your account")
	}

	if in.Password != in.PasswordConfirm {
		return fiber.NewError(fiber.StatusBadRequest, "passwords do not match")
	}

	user := models.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      models.RoleAdmin,
	}
	user.SetPassword(in.Password)

	if err := database.DB.Create(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// POST /api/login
func Login(c *fiber.Ctx) error {
	var in LoginDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid email format")
	}

	var user models.User
	if err := database.DB.Where("email = ?", in.Email).First(&user).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}

	if err := user.ComparePassword(in.Password); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}

	token, err := middlewares.GenerateJWT(user.Id, user.Role)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not sign token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FirstName + " " + user.LastName,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// POST /api/logout
func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
