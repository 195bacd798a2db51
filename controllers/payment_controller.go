package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhthang2k5/smart-restaurant-sub000/services"
)

// InitiateMomoPayment handles POST /api/v1/sessions/:id/payment/momo/initiate -
// starts a MoMo payment for the session's bill and returns the redirect URL
func InitiateMomoPayment(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payURL, err := services.GetPaymentService().InitiatePayment(sessionID, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"payUrl": payURL,
		},
	})
}

// MomoCallback handles POST /api/v1/payment/momo/callback - the gateway's
// IPN webhook. There is no auth on this route; authenticity rests on the
// payload signature. The response is always 204: a non-2xx answer would make
// the gateway retry-storm us, so processing failures are logged server-side
// and remain visible through the audit trail and status queries.
func MomoCallback(c *gin.Context) {
	var cb services.MomoCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		log.Printf("MoMo callback with unreadable payload: %v", err)
		c.Status(http.StatusNoContent)
		return
	}

	if err := services.GetPaymentService().ProcessCallback(&cb); err != nil {
		log.Printf("MoMo callback for trans %d not applied: %v", cb.TransID, err)
	}
	c.Status(http.StatusNoContent)
}

// CancelPaymentRequest represents the request body for abandoning a payment
type CancelPaymentRequest struct {
	Reason string `json:"reason"`
}

// CancelPayment handles POST /api/v1/sessions/:id/payment/cancel
func CancelPayment(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CancelPaymentRequest
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

	session, err := services.GetPaymentService().CancelPayment(sessionID, req.Reason, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session,
		"message": "Payment cancelled",
	})
}

// GetPaymentStatus handles GET /api/v1/sessions/:id/payment/status - read-only
// projection of the session's payment fields
func GetPaymentStatus(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status, err := services.GetPaymentService().GetPaymentStatus(sessionID, currentUser(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}
