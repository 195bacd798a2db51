package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/minhthang2k5/smart-restaurant-sub000/models"
	"github.com/minhthang2k5/smart-restaurant-sub000/services"
	"github.com/minhthang2k5/smart-restaurant-sub000/tests/testutil"
)

// seedPendingOrder creates a table, an active session and one pending order
// with two lines
func seedPendingOrder(t *testing.T, db *gorm.DB, tableNumber string) *models.Order {
	t.Helper()

	table := testutil.SeedTable(t, db, tableNumber)
	menuItem := testutil.SeedMenuItem(t, db, "Dish "+tableNumber, 50000)

	session, err := services.GetSessionService().CreateSession(table.ID, nil)
	assert.NoError(t, err)
	order, err := services.GetSessionService().CreateOrder(session.ID, services.CreateOrderInput{
		Items: []services.OrderItemInput{
			{MenuItemID: menuItem.ID, Quantity: 1},
			{MenuItemID: menuItem.ID, Quantity: 2},
		},
	}, nil)
	assert.NoError(t, err)
	return order
}

func TestAcceptOrderEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	waiter := testutil.SeedUser(t, db, "auth0|waiter", "waiter")
	customer := testutil.SeedUser(t, db, "auth0|customer", "customer")
	order := seedPendingOrder(t, db, "T1")

	// Customers cannot accept orders
	customerRouter := setupTestRouter()
	customerRouter.POST("/orders/:id/accept",
		mockAuthMiddleware(customer.Auth0ID, "customer"),
		AcceptOrder,
	)
	w := doJSON(customerRouter, http.MethodPost, fmt.Sprintf("/orders/%d/accept", order.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(parseResponse(t, w)))

	router := setupTestRouter()
	router.POST("/orders/:id/accept",
		mockAuthMiddleware(waiter.Auth0ID, "waiter"),
		AcceptOrder,
	)

	w = doJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/accept", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "accepted", data["status"])
	assert.Equal(t, float64(waiter.ID), data["waiter_id"])

	// Accepting twice conflicts
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/accept", order.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(parseResponse(t, w)))

	// Unknown order
	w = doJSON(router, http.MethodPost, "/orders/9999/accept", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRejectOrderEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	waiter := testutil.SeedUser(t, db, "auth0|waiter", "waiter")
	order := seedPendingOrder(t, db, "T1")

	router := setupTestRouter()
	router.POST("/orders/:id/reject",
		mockAuthMiddleware(waiter.Auth0ID, "waiter"),
		RejectOrder,
	)

	// The reason is mandatory
	w := doJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/reject", order.ID),
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(parseResponse(t, w)))

	w = doJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/reject", order.ID),
		map[string]interface{}{"reason": "out of stock"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "rejected", data["status"])
	assert.Equal(t, "out of stock", data["rejection_reason"])
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	kitchen := testutil.SeedUser(t, db, "auth0|kitchen", "kitchen")
	waiter := testutil.SeedUser(t, db, "auth0|waiter", "waiter")
	order := seedPendingOrder(t, db, "T1")
	_, err := services.GetSessionService().AcceptOrder(order.ID, waiter)
	assert.NoError(t, err)

	router := setupTestRouter()
	router.PATCH("/orders/:id/status",
		mockAuthMiddleware(kitchen.Auth0ID, "kitchen"),
		UpdateOrderStatus,
	)

	tests := []struct {
		name           string
		status         string
		expectedStatus int
		expectedError  string
	}{
		{"Accepted moves to preparing", "preparing", http.StatusOK, ""},
		{"Preparing moves to ready", "ready", http.StatusOK, ""},
		{"Ready cannot jump to completed", "completed", http.StatusConflict, "INVALID_TRANSITION"},
		{"Unknown status is rejected", "vaporised", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"Missing status is a binding failure", "", http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]interface{}{}
			if tt.status != "" {
				body["status"] = tt.status
			}
			w := doJSON(router, http.MethodPatch, fmt.Sprintf("/orders/%d/status", order.ID), body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(parseResponse(t, w)))
			}
		})
	}
}

func TestUpdateItemStatusEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	kitchen := testutil.SeedUser(t, db, "auth0|kitchen", "kitchen")
	waiter := testutil.SeedUser(t, db, "auth0|waiter", "waiter")
	order := seedPendingOrder(t, db, "T1")
	_, err := services.GetSessionService().AcceptOrder(order.ID, waiter)
	assert.NoError(t, err)
	itemID := order.Items[0].ID

	router := setupTestRouter()
	router.PATCH("/orders/items/:itemId/status",
		mockAuthMiddleware(kitchen.Auth0ID, "kitchen"),
		UpdateItemStatus,
	)

	w := doJSON(router, http.MethodPatch, fmt.Sprintf("/orders/items/%d/status", itemID),
		map[string]interface{}{"status": "preparing"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "preparing", data["status"])

	// The other line is untouched
	var sibling models.OrderItem
	assert.NoError(t, db.First(&sibling, order.Items[1].ID).Error)
	assert.Equal(t, models.ItemStatusConfirmed, sibling.Status)

	// Skipping ahead conflicts
	w = doJSON(router, http.MethodPatch, fmt.Sprintf("/orders/items/%d/status", itemID),
		map[string]interface{}{"status": "served"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(parseResponse(t, w)))
}
