package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/minhthang2k5/smart-restaurant-sub000/config"
	"github.com/minhthang2k5/smart-restaurant-sub000/middleware"
	"github.com/minhthang2k5/smart-restaurant-sub000/models"
	"github.com/minhthang2k5/smart-restaurant-sub000/services"
	"github.com/minhthang2k5/smart-restaurant-sub000/tests/testutil"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// mockAuthMiddleware stores a validated actor in the context the same way the
// real JWT middleware does
func mockAuthMiddleware(auth0ID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)

		mockClaims := &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{Role: role},
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

// setupControllerTest wires a fresh in-memory database into the package-global
// service instances used by the handlers
func setupControllerTest(t *testing.T) (*gorm.DB, *services.MockPaymentGateway) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	config.SetDB(db)

	gateway := services.NewMockPaymentGateway()
	services.InitSessionService(db, 0.10)
	services.InitPaymentService(db, gateway, 0.10)
	services.SetNotifier(&services.NoopNotifier{})

	return db, gateway
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestCreateSessionEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	table := testutil.SeedTable(t, db, "T1")

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "Successfully start a session",
			requestBody:    map[string]interface{}{"tableId": table.ID},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "active", data["status"])
				assert.Equal(t, "unpaid", data["payment_status"])
				assert.NotEmpty(t, data["session_number"])
			},
		},
		{
			name:           "Fail with second session on the same table",
			requestBody:    map[string]interface{}{"tableId": table.ID},
			expectedStatus: http.StatusConflict,
			expectedError:  "SESSION_CONFLICT",
		},
		{
			name:           "Fail with missing tableId",
			requestBody:    map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Fail with unknown table",
			requestBody:    map[string]interface{}{"tableId": 9999},
			expectedStatus: http.StatusNotFound,
			expectedError:  "NOT_FOUND",
		},
	}

	router := setupTestRouter()
	router.POST("/sessions", CreateSession)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/sessions", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := parseResponse(t, w)
			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				assert.Equal(t, tt.expectedError, errorCode(response))
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestGetActiveSessionByTableEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	table := testutil.SeedTable(t, db, "T1")

	session, err := services.GetSessionService().CreateSession(table.ID, nil)
	assert.NoError(t, err)

	router := setupTestRouter()
	router.GET("/sessions/table/:tableId", GetActiveSessionByTable)

	w := doJSON(router, http.MethodGet, "/sessions/table/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(session.ID), data["id"])

	// Unknown table has no active session
	w = doJSON(router, http.MethodGet, "/sessions/table/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Malformed id
	w = doJSON(router, http.MethodGet, "/sessions/table/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimSessionEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	table := testutil.SeedTable(t, db, "T1")
	customer := testutil.SeedUser(t, db, "auth0|claimer", "customer")

	session, err := services.GetSessionService().CreateSession(table.ID, nil)
	assert.NoError(t, err)

	// Anonymous claim is rejected
	anonRouter := setupTestRouter()
	anonRouter.POST("/sessions/:id/claim", ClaimSession)
	w := doJSON(anonRouter, http.MethodPost, "/sessions/1/claim", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(parseResponse(t, w)))

	// Authenticated claim binds the customer
	router := setupTestRouter()
	router.POST("/sessions/:id/claim",
		mockAuthMiddleware(customer.Auth0ID, "customer"),
		ClaimSession,
	)
	w = doJSON(router, http.MethodPost, "/sessions/1/claim", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(customer.ID), data["customer_id"])

	var persisted models.Session
	assert.NoError(t, db.First(&persisted, session.ID).Error)
	assert.Equal(t, customer.ID, *persisted.CustomerID)
}

func TestCreateOrderEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	table := testutil.SeedTable(t, db, "T1")
	menuItem := testutil.SeedMenuItem(t, db, "Pho Bo", 50000, 5000)
	optionID := menuItem.ModifierGroups[0].Options[0].ID

	_, err := services.GetSessionService().CreateSession(table.ID, nil)
	assert.NoError(t, err)

	router := setupTestRouter()
	router.POST("/sessions/:id/orders", CreateOrder)

	tests := []struct {
		name           string
		path           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "Successfully place an order",
			path: "/sessions/1/orders",
			requestBody: map[string]interface{}{
				"items": []map[string]interface{}{
					{
						"menuItemId":          menuItem.ID,
						"quantity":            2,
						"specialInstructions": "extra chili",
						"modifiers":           []map[string]interface{}{{"optionId": optionID}},
					},
				},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "pending", data["status"])
				assert.Equal(t, float64(110000), data["subtotal"])
				assert.Equal(t, float64(121000), data["total"])

				items := data["items"].([]interface{})
				assert.Len(t, items, 1)
				line := items[0].(map[string]interface{})
				assert.Equal(t, "Pho Bo", line["item_name"])
				assert.Equal(t, float64(50000), line["unit_price"])
				assert.Equal(t, "extra chili", line["special_instructions"])
			},
		},
		{
			name:           "Fail with empty items",
			path:           "/sessions/1/orders",
			requestBody:    map[string]interface{}{"items": []map[string]interface{}{}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with unknown session",
			path: "/sessions/999/orders",
			requestBody: map[string]interface{}{
				"items": []map[string]interface{}{{"menuItemId": menuItem.ID, "quantity": 1}},
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "NOT_FOUND",
		},
		{
			name: "Fail with unknown menu item",
			path: "/sessions/1/orders",
			requestBody: map[string]interface{}{
				"items": []map[string]interface{}{{"menuItemId": 9999, "quantity": 1}},
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, tt.path, tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := parseResponse(t, w)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(response))
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestCompleteSessionEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	table := testutil.SeedTable(t, db, "T1")
	menuItem := testutil.SeedMenuItem(t, db, "Pho Bo", 80000)

	waiter := testutil.SeedUser(t, db, "auth0|waiter", "waiter")

	session, err := services.GetSessionService().CreateSession(table.ID, nil)
	assert.NoError(t, err)
	order, err := services.GetSessionService().CreateOrder(session.ID, services.CreateOrderInput{
		Items: []services.OrderItemInput{{MenuItemID: menuItem.ID, Quantity: 1}},
	}, nil)
	assert.NoError(t, err)
	_, err = services.GetSessionService().AcceptOrder(order.ID, waiter)
	assert.NoError(t, err)

	// Without credentials the route is closed before the handler runs
	anonRouter := setupTestRouter()
	anonRouter.POST("/sessions/:id/complete",
		middleware.RequireActor(), middleware.RequireStaff(), CompleteSession)
	w := doJSON(anonRouter, http.MethodPost, "/sessions/1/complete",
		map[string]interface{}{"paymentMethod": "cash"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	router := setupTestRouter()
	router.POST("/sessions/:id/complete",
		mockAuthMiddleware(waiter.Auth0ID, "waiter"),
		middleware.RequireActor(), middleware.RequireStaff(), CompleteSession)

	// Missing payment method is a binding failure
	w = doJSON(router, http.MethodPost, "/sessions/1/complete", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/sessions/1/complete",
		map[string]interface{}{"paymentMethod": "cash"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, "paid", data["payment_status"])
	assert.Equal(t, float64(88000), data["total"])

	// Completing again conflicts
	w = doJSON(router, http.MethodPost, "/sessions/1/complete",
		map[string]interface{}{"paymentMethod": "cash"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(parseResponse(t, w)))
}

func TestCancelSessionEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	table := testutil.SeedTable(t, db, "T1")
	waiter := testutil.SeedUser(t, db, "auth0|waiter", "waiter")

	_, err := services.GetSessionService().CreateSession(table.ID, nil)
	assert.NoError(t, err)

	// Customers cannot close out a table
	customer := testutil.SeedUser(t, db, "auth0|cust", "customer")
	customerRouter := setupTestRouter()
	customerRouter.POST("/sessions/:id/cancel",
		mockAuthMiddleware(customer.Auth0ID, "customer"),
		middleware.RequireActor(), middleware.RequireStaff(), CancelSession)
	w := doJSON(customerRouter, http.MethodPost, "/sessions/1/cancel", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	router := setupTestRouter()
	router.POST("/sessions/:id/cancel",
		mockAuthMiddleware(waiter.Auth0ID, "waiter"),
		middleware.RequireActor(), middleware.RequireStaff(), CancelSession)

	// Empty body is fine: the reason is optional
	w = doJSON(router, http.MethodPost, "/sessions/1/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "cancelled", data["status"])
}

func TestGetBillEndpoint(t *testing.T) {
	db, _ := setupControllerTest(t)
	table := testutil.SeedTable(t, db, "T1")
	menuItem := testutil.SeedMenuItem(t, db, "Pho Bo", 50000)

	session, err := services.GetSessionService().CreateSession(table.ID, nil)
	assert.NoError(t, err)
	_, err = services.GetSessionService().CreateOrder(session.ID, services.CreateOrderInput{
		Items: []services.OrderItemInput{{MenuItemID: menuItem.ID, Quantity: 2}},
	}, nil)
	assert.NoError(t, err)

	router := setupTestRouter()
	router.GET("/sessions/:id/bill", GetBill)

	w := doJSON(router, http.MethodGet, "/sessions/1/bill", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(100000), data["subtotal"])
	assert.Equal(t, float64(10000), data["tax"])
	assert.Equal(t, float64(110000), data["total"])
}
