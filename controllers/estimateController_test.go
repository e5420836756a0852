package controllers_test

import (
	"fmt"
	"strings"
	"testing"

	"fensterfix-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func estimatePayload(orderID uint, discountPercent, discountAmount float64, items ...map[string]any) map[string]any {
	return map[string]any{
		"order_id":         orderID,
		"items":            items,
		"discount_percent": discountPercent,
		"discount_amount":  discountAmount,
	}
}

func item(name string, qty, price float64) map[string]any {
	return map[string]any{
		"category":   "mosquito_screen",
		"item_name":  name,
		"quantity":   qty,
		"unit_price": price,
		"unit_type":  "piece",
	}
}

func TestCreateEstimateComputesTotals(t *testing.T) {
	app, db, token := newTestApp(t)
	order := seedOrder(t, db, seedClient(t, db).Id)

	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 10, 0,
			item("fly screen, fixed frame", 2, 1500),
			item("installation", 1, 800),
		))
	require.Equal(t, 201, resp.StatusCode)

	var created struct {
		ID             uint   `json:"id"`
		EstimateNumber string `json:"estimate_number"`
	}
	decodeJSON(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.True(t, strings.HasPrefix(created.EstimateNumber, "KV-"), "number %q should carry the KV- prefix", created.EstimateNumber)

	resp = doJSON(t, app, "GET", fmt.Sprintf("/api/estimates/%d", created.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)

	var est models.Estimate
	decodeJSON(t, resp, &est)
	assert.Equal(t, 3800.0, est.TotalAmount)
	assert.Equal(t, 380.0, est.DiscountAmount)
	assert.Equal(t, 3420.0, est.FinalAmount)
	assert.Equal(t, models.EstimateStatusDraft, est.Status)
	require.Len(t, est.Items, 2)
	assert.Equal(t, 3000.0, est.Items[0].TotalPrice)
	assert.Equal(t, order.ID, est.OrderID)
}

func TestCreateEstimateRejectsWhenNoValidItems(t *testing.T) {
	app, db, token := newTestApp(t)
	order := seedOrder(t, db, seedClient(t, db).Id)

	// Zero quantity and nameless rows are dropped; nothing survives.
	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 0, 0,
			item("fly screen", 0, 1500),
			item("", 2, 100),
		))
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCreateEstimateDropsInvalidItemsSilently(t *testing.T) {
	app, db, token := newTestApp(t)
	order := seedOrder(t, db, seedClient(t, db).Id)

	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 0, 0,
			item("fly screen", 1, 500),
			item("abandoned row", 0, 999),
		))
	require.Equal(t, 201, resp.StatusCode)

	var created struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &created)

	var count int64
	require.NoError(t, db.Model(&models.EstimateItem{}).Where("estimate_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateEstimateUnknownOrder(t *testing.T) {
	app, _, token := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(9999, 0, 0, item("fly screen", 1, 100)))
	assert.Equal(t, 404, resp.StatusCode)
}

func TestCreateEstimatePrefillsFromCatalog(t *testing.T) {
	app, db, token := newTestApp(t)
	order := seedOrder(t, db, seedClient(t, db).Id)

	service := models.Service{
		Name:      "Roller blind, fabric",
		Category:  models.CategoryRollerBlind,
		UnitType:  models.UnitSquareMeter,
		BasePrice: 450,
		Active:    true,
	}
	require.NoError(t, db.Create(&service).Error)

	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 0, 0, map[string]any{
			"category":   "roller_blind",
			"service_id": service.Id,
			"quantity":   2.5,
			"unit_price": 450,
		}))
	require.Equal(t, 201, resp.StatusCode)

	var created struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &created)

	var stored models.EstimateItem
	require.NoError(t, db.First(&stored, "estimate_id = ?", created.ID).Error)
	assert.Equal(t, "Roller blind, fabric", stored.ItemName)
	assert.Equal(t, models.UnitSquareMeter, stored.UnitType)
	assert.Equal(t, 1125.0, stored.TotalPrice)
}

func TestCreateEstimateRejectsRepairAttributesOnOtherCategories(t *testing.T) {
	app, db, token := newTestApp(t)
	order := seedOrder(t, db, seedClient(t, db).Id)

	bad := item("fly screen", 1, 100)
	bad["profile_type"] = "PVC"

	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 0, 0, bad))
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCreateEstimateAcceptsRepairAttributes(t *testing.T) {
	app, db, token := newTestApp(t)
	order := seedOrder(t, db, seedClient(t, db).Id)

	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 0, 0, map[string]any{
			"category":     "repair",
			"item_name":    "sash adjustment",
			"quantity":     1,
			"unit_price":   900,
			"unit_type":    "piece",
			"profile_type": "PVC",
			"system_type":  "Maco",
			"sash_type":    "tilt_turn",
			"notes":        "upper hinge grinding",
			"photos":       []string{"uploads/a1.jpg", "uploads/a2.jpg"},
		}))
	require.Equal(t, 201, resp.StatusCode)

	var created struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &created)

	var stored models.EstimateItem
	require.NoError(t, db.First(&stored, "estimate_id = ?", created.ID).Error)
	assert.Equal(t, "PVC", stored.ProfileType)
	assert.Equal(t, "Maco", stored.SystemType)
	assert.Equal(t, "tilt_turn", stored.SashType)
	assert.JSONEq(t, `["uploads/a1.jpg","uploads/a2.jpg"]`, string(stored.Photos))
}

func TestNegativeFinalAmountIsPreserved(t *testing.T) {
	app, db, token := newTestApp(t)
	order := seedOrder(t, db, seedClient(t, db).Id)

	// A fixed discount above the total is accepted; final goes negative.
	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 0, 150, item("small repair", 1, 100)))
	require.Equal(t, 201, resp.StatusCode)

	var created struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &created)

	var est models.Estimate
	require.NoError(t, db.First(&est, "id = ?", created.ID).Error)
	assert.Equal(t, 100.0, est.TotalAmount)
	assert.Equal(t, 150.0, est.DiscountAmount)
	assert.Equal(t, -50.0, est.FinalAmount)
}

func TestUpdateEstimateReplacesItems(t *testing.T) {
	app, db, token := newTestApp(t)
	order := seedOrder(t, db, seedClient(t, db).Id)

	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 10, 0,
			item("fly screen", 2, 1500),
			item("installation", 1, 800),
		))
	require.Equal(t, 201, resp.StatusCode)
	var created struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &created)

	var oldIDs []uint
	require.NoError(t, db.Model(&models.EstimateItem{}).
		Where("estimate_id = ?", created.ID).Pluck("id", &oldIDs).Error)
	require.Len(t, oldIDs, 2)

	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/estimates/%d", created.ID), token,
		estimatePayload(0, 0, 0, item("roller blind", 3, 400)))
	require.Equal(t, 200, resp.StatusCode)

	var updated models.Estimate
	decodeJSON(t, resp, &updated)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "roller blind", updated.Items[0].ItemName)
	assert.Equal(t, 1200.0, updated.TotalAmount)
	assert.Equal(t, 0.0, updated.DiscountAmount)
	assert.Equal(t, 1200.0, updated.FinalAmount)

	// No residue of the replaced items.
	var count int64
	require.NoError(t, db.Model(&models.EstimateItem{}).
		Where("id IN ?", oldIDs).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	require.NoError(t, db.Model(&models.EstimateItem{}).
		Where("estimate_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateEstimateCannotChangeOrder(t *testing.T) {
	app, db, token := newTestApp(t)
	client := seedClient(t, db)
	order := seedOrder(t, db, client.Id)
	other := seedOrder(t, db, client.Id)

	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 0, 0, item("fly screen", 1, 100)))
	require.Equal(t, 201, resp.StatusCode)
	var created struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &created)

	resp = doJSON(t, app, "PUT", fmt.Sprintf("/api/estimates/%d", created.ID), token,
		estimatePayload(other.ID, 0, 0, item("fly screen", 1, 100)))
	assert.Equal(t, 400, resp.StatusCode)
}

func TestApproveEstimateIsOneWayAndIdempotent(t *testing.T) {
	app, db, token := newTestApp(t)
	order := seedOrder(t, db, seedClient(t, db).Id)

	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 0, 0, item("fly screen", 1, 100)))
	require.Equal(t, 201, resp.StatusCode)
	var created struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &created)

	path := fmt.Sprintf("/api/estimates/%d", created.ID)

	resp = doJSON(t, app, "PUT", path, token, map[string]any{"status": "approved"})
	require.Equal(t, 200, resp.StatusCode)
	var est models.Estimate
	decodeJSON(t, resp, &est)
	assert.Equal(t, models.EstimateStatusApproved, est.Status)

	// Approving again is a no-op, not an error.
	resp = doJSON(t, app, "PUT", path, token, map[string]any{"status": "approved"})
	require.Equal(t, 200, resp.StatusCode)
	decodeJSON(t, resp, &est)
	assert.Equal(t, models.EstimateStatusApproved, est.Status)

	// No reversal operation exists; reads keep reporting approved.
	resp = doJSON(t, app, "GET", path, token, nil)
	require.Equal(t, 200, resp.StatusCode)
	decodeJSON(t, resp, &est)
	assert.Equal(t, models.EstimateStatusApproved, est.Status)

	resp = doJSON(t, app, "PUT", path, token, map[string]any{"status": "draft"})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestEstimateHistory(t *testing.T) {
	app, db, token := newTestApp(t)
	order := seedOrder(t, db, seedClient(t, db).Id)

	resp := doJSON(t, app, "POST", "/api/estimates", token,
		estimatePayload(order.ID, 0, 0, item("fly screen", 1, 100)))
	require.Equal(t, 201, resp.StatusCode)
	var created struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &created)

	path := fmt.Sprintf("/api/estimates/%d", created.ID)
	resp = doJSON(t, app, "PUT", path, token,
		estimatePayload(0, 0, 0, item("roller blind", 2, 400)))
	require.Equal(t, 200, resp.StatusCode)
	resp = doJSON(t, app, "PUT", path, token, map[string]any{"status": "approved"})
	require.Equal(t, 200, resp.StatusCode)

	resp = doJSON(t, app, "GET", path+"/history", token, nil)
	require.Equal(t, 200, resp.StatusCode)

	var out struct {
		History []models.EstimateHistory `json:"history"`
	}
	decodeJSON(t, resp, &out)
	require.Len(t, out.History, 3)
	assert.Equal(t, "created", out.History[0].Action)
	assert.Equal(t, "updated", out.History[1].Action)
	assert.Equal(t, "approved", out.History[2].Action)
	for _, entry := range out.History {
		assert.NotEmpty(t, entry.ChangedBy)
		assert.False(t, entry.ChangedAt.IsZero())
		assert.NotEmpty(t, entry.NewValue)
	}
}

func TestEstimateNotFound(t *testing.T) {
	app, _, token := newTestApp(t)

	resp := doJSON(t, app, "GET", "/api/estimates/9999", token, nil)
	assert.Equal(t, 404, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/estimates/9999/history", token, nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestEstimatesListFilterByOrder(t *testing.T) {
	app, db, token := newTestApp(t)
	client := seedClient(t, db)
	orderA := seedOrder(t, db, client.Id)
	orderB := seedOrder(t, db, client.Id)

	for _, order := range []models.Order{orderA, orderB} {
		resp := doJSON(t, app, "POST", "/api/estimates", token,
			estimatePayload(order.ID, 0, 0, item("fly screen", 1, 100)))
		require.Equal(t, 201, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, app, "GET", fmt.Sprintf("/api/estimates?order_id=%d", orderA.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)

	var out struct {
		Estimates []models.Estimate `json:"estimates"`
	}
	decodeJSON(t, resp, &out)
	require.Len(t, out.Estimates, 1)
	assert.Equal(t, orderA.ID, out.Estimates[0].OrderID)
}

func TestEstimatesRequireAuth(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := doJSON(t, app, "GET", "/api/estimates", "", nil)
	assert.Equal(t, 401, resp.StatusCode)
}
