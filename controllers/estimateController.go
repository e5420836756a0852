package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"fensterfix-backend/database"
	"fensterfix-backend/middlewares"
	"fensterfix-backend/models"
	"fensterfix-backend/pricing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EstimateItemDTO struct {
	ServiceID   string   `json:"service_id" validate:"omitempty,uuid4"`
	Category    string   `json:"category" validate:"required"`
	ItemName    string   `json:"item_name" validate:"omitempty"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   float64  `json:"unit_price"`
	UnitType    string   `json:"unit_type" validate:"omitempty"`
	ProfileType string   `json:"profile_type" validate:"omitempty"`
	SystemType  string   `json:"system_type" validate:"omitempty"`
	SashType    string   `json:"sash_type" validate:"omitempty"`
	Notes       string   `json:"notes" validate:"omitempty"`
	Photos      []string `json:"photos" validate:"omitempty,dive,max=512"`
}

type EstimatePayload struct {
	OrderID         uint              `json:"order_id"`
	Items           []EstimateItemDTO `json:"items"`
	DiscountPercent float64           `json:"discount_percent" validate:"gte=0,lte=100"`
	DiscountAmount  float64           `json:"discount_amount" validate:"gte=0"`
	// Alternative payload shape: {"status": "approved"} triggers the
	// one-way draft → approved transition instead of an item replace.
	Status string `json:"status" validate:"omitempty"`
}

// buildEstimateItems turns the submitted item list into persistable rows.
// Items without a selected service/name or with a non-positive quantity are
// dropped from the submission (never stored); malformed items are rejected.
// The stored per-item total is always recomputed from quantity × unit price.
func buildEstimateItems(db *gorm.DB, dtos []EstimateItemDTO) ([]models.EstimateItem, error) {
	var items []models.EstimateItem

	for i, in := range dtos {
		in.ItemName = strings.TrimSpace(in.ItemName)
		in.ServiceID = strings.TrimSpace(in.ServiceID)

		// Incomplete rows vanish from the submission.
		if in.ItemName == "" && in.ServiceID == "" {
			continue
		}
		if in.Quantity <= 0 {
			continue
		}

		if math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) ||
			math.IsNaN(in.UnitPrice) || math.IsInf(in.UnitPrice, 0) {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid number at item %d", i))
		}
		if in.UnitPrice < 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("negative unit price at item %d", i))
		}

		category := models.ServiceCategory(in.Category)
		if !category.Valid() {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown category at item %d", i))
		}

		// Repair-specific attributes are only constructible with the repair category.
		if category != models.CategoryRepair &&
			(in.ProfileType != "" || in.SystemType != "" || in.SashType != "") {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("repair attributes not allowed for category %q at item %d", in.Category, i))
		}

		item := models.EstimateItem{
			Category:  category,
			ItemName:  in.ItemName,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			UnitType:  models.UnitType(in.UnitType),

			ProfileType: strings.TrimSpace(in.ProfileType),
			SystemType:  strings.TrimSpace(in.SystemType),
			SashType:    strings.TrimSpace(in.SashType),
			Notes:       strings.TrimSpace(in.Notes),
		}

		if in.ServiceID != "" {
			var service models.Service
			if err := db.First(&service, "id = ?", in.ServiceID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown service at item %d", i))
				}
				return nil, fiber.NewError(fiber.StatusInternalServerError, "db error")
			}
			item.ServiceID = &service.Id
			if item.ItemName == "" {
				item.ItemName = service.Name
			}
			if item.UnitType == "" {
				item.UnitType = service.UnitType
			}
		}

		if item.UnitType != "" && !item.UnitType.Valid() {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown unit type at item %d", i))
		}

		if len(in.Photos) > 0 {
			blob, err := json.Marshal(in.Photos)
			if err != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid photos at item %d", i))
			}
			item.Photos = datatypes.JSON(blob)
		}

		item.TotalPrice = pricing.LineTotal(item.Quantity, item.UnitPrice)
		items = append(items, item)
	}

	return items, nil
}

func engineItems(items []models.EstimateItem) []pricing.Item {
	out := make([]pricing.Item, len(items))
	for i, item := range items {
		out[i] = pricing.Item{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return out
}

// newEstimateNumber derives a human-readable unique number from the clock.
// Time-derived rather than sequential, so no coordination is needed.
func newEstimateNumber() string {
	return fmt.Sprintf("KV-%d", time.Now().UnixNano())
}

func appendEstimateHistory(db *gorm.DB, estimateID uint, action, userID string, value any) error {
	blob, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return db.Create(&models.EstimateHistory{
		EstimateID: estimateID,
		Action:     action,
		ChangedBy:  userID,
		NewValue:   datatypes.JSON(blob),
		ChangedAt:  time.Now().UTC(),
	}).Error
}

// POST /api/estimates
func CreateEstimate(c *fiber.Ctx) error {
	var in EstimatePayload
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var order models.Order
	if err := db.First(&order, "id = ?", in.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	items, err := buildEstimateItems(db, in.Items)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "estimate has no valid items")
	}

	// The server never trusts client-side totals; it recomputes from the
	// submitted item list with the same algorithm the browser previews with.
	totals := pricing.ComputeTotals(engineItems(items), in.DiscountPercent, in.DiscountAmount)

	estimate := models.Estimate{
		EstimateNumber:  newEstimateNumber(),
		OrderID:         order.ID,
		Items:           items,
		TotalAmount:     totals.Total,
		DiscountPercent: in.DiscountPercent,
		DiscountAmount:  totals.Discount,
		FinalAmount:     totals.Final,
		Status:          models.EstimateStatusDraft,
	}
	if err := db.Create(&estimate).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create estimate")
	}

	userID, _ := c.Locals("userID").(string)
	if err := appendEstimateHistory(db, estimate.ID, "created", userID, estimate); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not record estimate history")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":              estimate.ID,
		"estimate_number": estimate.EstimateNumber,
	})
}

// GET /api/estimates?order_id=
func GetEstimates(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	query := db.Model(&models.Estimate{}).Preload("Items").Preload("Order").Preload("Order.Client")
	if orderID := c.Query("order_id"); orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	var estimates []models.Estimate
	if err := query.Order("id desc").Find(&estimates).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{
		"estimates": estimates,
		"message":   "success",
	})
}

// GET /api/estimates/:id
func GetEstimate(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var estimate models.Estimate
	if err := db.Preload("Items").Preload("Order").Preload("Order.Client").
		First(&estimate, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "estimate not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(estimate)
}

// PUT /api/estimates/:id
// Full replace: the persisted item set is deleted and reinserted from the
// request, totals recomputed. {status:"approved"} instead approves.
func UpdateEstimate(c *fiber.Ctx) error {
	var in EstimatePayload
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var estimate models.Estimate
	if err := db.First(&estimate, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "estimate not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	userID, _ := c.Locals("userID").(string)

	// Approve path
	if len(in.Items) == 0 && in.Status != "" {
		if in.Status != string(models.EstimateStatusApproved) {
			return fiber.NewError(fiber.StatusBadRequest, "unsupported status")
		}
		if estimate.Status == models.EstimateStatusApproved {
			// Already approved: no-op, not an error.
			return c.JSON(estimate)
		}
		if err := db.Model(&estimate).Update("status", models.EstimateStatusApproved).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not approve estimate")
		}
		estimate.Status = models.EstimateStatusApproved
		if err := appendEstimateHistory(db, estimate.ID, "approved", userID, estimate); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not record estimate history")
		}
		return c.JSON(estimate)
	}

	// Replace path. The owning order reference is immutable.
	if in.OrderID != 0 && in.OrderID != estimate.OrderID {
		return fiber.NewError(fiber.StatusBadRequest, "order reference cannot be changed")
	}

	items, err := buildEstimateItems(db, in.Items)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "estimate has no valid items")
	}

	totals := pricing.ComputeTotals(engineItems(items), in.DiscountPercent, in.DiscountAmount)

	// Delete-all-then-reinsert; no per-item diffing.
	if err := db.Where("estimate_id = ?", estimate.ID).Delete(&models.EstimateItem{}).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not replace estimate items")
	}
	for i := range items {
		items[i].EstimateID = estimate.ID
	}
	if err := db.Create(&items).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not replace estimate items")
	}

	updates := map[string]interface{}{
		"total_amount":     totals.Total,
		"discount_percent": in.DiscountPercent,
		"discount_amount":  totals.Discount,
		"final_amount":     totals.Final,
	}
	if err := db.Model(&estimate).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not update estimate")
	}

	var out models.Estimate
	if err := db.Preload("Items").First(&out, "id = ?", estimate.ID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload estimate")
	}
	if err := appendEstimateHistory(db, out.ID, "updated", userID, out); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not record estimate history")
	}
	return c.JSON(out)
}

// GET /api/estimates/:id/history
func GetEstimateHistory(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var estimate models.Estimate
	if err := db.First(&estimate, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "estimate not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	var history []models.EstimateHistory
	if err := db.Where("estimate_id = ?", estimate.ID).
		Order("changed_at, id").Find(&history).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{
		"history": history,
		"message": "success",
	})
}
