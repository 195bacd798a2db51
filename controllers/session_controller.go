package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhthang2k5/smart-restaurant-sub000/services"
)

// CreateSessionRequest represents the request body for starting a session
type CreateSessionRequest struct {
	TableID uint `json:"tableId" binding:"required"`
}

// CreateSession handles POST /api/v1/sessions - starts a dining visit at a table
func CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	session, err := services.GetSessionService().CreateSession(req.TableID, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    session,
	})
}

// GetActiveSessionByTable handles GET /api/v1/sessions/table/:tableId -
// returns the table's current session with orders loaded
func GetActiveSessionByTable(c *gin.Context) {
	tableID, ok := parseIDParam(c, "tableId")
	if !ok {
		return
	}

	session, err := services.GetSessionService().GetActiveSessionByTable(tableID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session,
	})
}

// GetSession handles GET /api/v1/sessions/:id
func GetSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := services.GetSessionService().GetSession(sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session,
	})
}

// ClaimSession handles POST /api/v1/sessions/:id/claim - binds the logged-in
// customer to the session. Binding is first-writer-wins: a session already
// claimed by someone else is returned unchanged.
func ClaimSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor := currentUser(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Sign in to claim a session",
			},
		})
		return
	}

	session, err := services.GetSessionService().ClaimSession(sessionID, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session,
	})
}

// CreateOrder handles POST /api/v1/sessions/:id/orders - creates an order
// with line items and modifiers inside the session
func CreateOrder(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := services.GetSessionService().CreateOrder(sessionID, req, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// CompleteSessionRequest represents the request body for finalizing a session
type CompleteSessionRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

// CompleteSession handles POST /api/v1/sessions/:id/complete - finalizes the
// bill and cascades the session's orders to completed
func CompleteSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	session, err := services.GetSessionService().CompleteSession(sessionID, req.PaymentMethod, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session,
		"message": "Session completed",
	})
}

// CancelSessionRequest represents the request body for cancelling a session
type CancelSessionRequest struct {
	Reason string `json:"reason"`
}

// CancelSession handles POST /api/v1/sessions/:id/cancel
func CancelSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	session, err := services.GetSessionService().CancelSession(sessionID, req.Reason, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session,
		"message": "Session cancelled",
	})
}

// GetBill handles GET /api/v1/sessions/:id/bill - previews the bill using the
// same totals computation completion will use
func GetBill(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bill, err := services.GetSessionService().BillPreview(sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bill,
	})
}
