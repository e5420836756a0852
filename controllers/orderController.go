package controllers

import (
	"errors"
	"time"

	"fensterfix-backend/database"
	"fensterfix-backend/middlewares"
	"fensterfix-backend/models"
	"fensterfix-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OrderCreateDTO struct {
	ClientID    uint       `json:"client_id" validate:"required"`
	Address     string     `json:"address" validate:"required,min=1"`
	Problem     string     `json:"problem" validate:"omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at" validate:"omitempty"`
}

type OrderUpdateDTO struct {
	Address     *string    `json:"address" validate:"omitempty,min=1"`
	Problem     *string    `json:"problem" validate:"omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at" validate:"omitempty"`
}

type OrderAssignDTO struct {
	WorkerID string `json:"worker_id" validate:"required,uuid4"`
}

type OrderStatusDTO struct {
	Status string `json:"status" validate:"required"`
}

// POST /api/order
func CreateOrder(c *fiber.Ctx) error {
	var in OrderCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var client models.Client
	if err := db.First(&client, "id = ?", in.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	order := models.Order{
		ClientID:    client.Id,
		Address:     in.Address,
		Problem:     in.Problem,
		Status:      models.OrderStatusNew,
		ScheduledAt: in.ScheduledAt,
	}
	if err := db.Create(&order).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create order")
	}

	order.Client = client
	return c.Status(fiber.StatusCreated).JSON(order)
}

// GET /api/orders?status=&worker_id=
func GetOrders(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	query := db.Model(&models.Order{}).Preload("Client").Preload("Worker")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if workerID := c.Query("worker_id"); workerID != "" {
		query = query.Where("worker_id = ?", workerID)
	}

	var orders []models.Order
	if err := query.Order("id desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{
		"orders":  orders,
		"message": "success",
	})
}

// GET /api/order/:id
func GetOrder(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var order models.Order
	if err := db.Preload("Client").Preload("Worker").First(&order, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	// Estimate headers composed against this order (items fetched per estimate).
	var estimates []models.Estimate
	if err := db.Where("order_id = ?", order.ID).Order("id").Find(&estimates).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	return c.JSON(fiber.Map{
		"order":     order,
		"estimates": estimates,
	})
}

// PUT /api/order/:id
func UpdateOrder(c *fiber.Ctx) error {
	var in OrderUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var existing models.Order
	if err := db.First(&existing, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update order")
		}
	}

	var out models.Order
	if err := db.Preload("Client").Preload("Worker").First(&out, "id = ?", existing.ID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload order")
	}
	return c.JSON(out)
}

// PUT /api/order/:id/assign
func AssignOrder(c *fiber.Ctx) error {
	var in OrderAssignDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var order models.Order
	if err := db.First(&order, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	var worker models.User
	if err := db.Where("id = ? AND role = ?", in.WorkerID, models.RoleWorker).First(&worker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "worker not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := map[string]interface{}{"worker_id": worker.Id}
	if order.Status == models.OrderStatusNew {
		updates["status"] = models.OrderStatusAssigned
	}
	if err := db.Model(&order).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not assign worker")
	}

	var out models.Order
	if err := db.Preload("Client").Preload("Worker").First(&out, "id = ?", order.ID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload order")
	}
	return c.JSON(out)
}

// PUT /api/order/:id/status
func UpdateOrderStatus(c *fiber.Ctx) error {
	var in OrderStatusDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var order models.Order
	if err := db.First(&order, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	to := models.OrderStatus(in.Status)
	if !order.Status.CanTransition(to) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status transition")
	}

	if err := db.Model(&order).Update("status", to).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update status")
	}

	order.Status = to
	return c.JSON(order)
}
