package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhthang2k5/smart-restaurant-sub000/services"
)

// AcceptOrder handles POST /api/v1/orders/:id/accept - waiter accepts a
// pending order, confirming all of its pending items atomically
func AcceptOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := services.GetSessionService().AcceptOrder(orderID, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
		"message": "Order accepted",
	})
}

// RejectOrderRequest represents the request body for rejecting an order
type RejectOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectOrder handles POST /api/v1/orders/:id/reject - waiter rejects a
// pending order with a reason
func RejectOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A rejection reason is required",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := services.GetSessionService().RejectOrder(orderID, req.Reason, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
		"message": "Order rejected",
	})
}

// UpdateStatusRequest represents the request body for status transitions
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - advances an
// order through its state machine
func UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A target status is required",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := services.GetSessionService().UpdateOrderStatus(orderID, req.Status, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateItemStatus handles PATCH /api/v1/orders/items/:itemId/status -
// advances one order line through the item state machine
func UpdateItemStatus(c *gin.Context) {
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A target status is required",
				"details": err.Error(),
			},
		})
		return
	}

	item, err := services.GetSessionService().UpdateItemStatus(itemID, req.Status, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
	})
}
