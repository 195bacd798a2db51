package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minhthang2k5/smart-restaurant-sub000/config"
	"github.com/minhthang2k5/smart-restaurant-sub000/middleware"
	"github.com/minhthang2k5/smart-restaurant-sub000/models"
	"github.com/minhthang2k5/smart-restaurant-sub000/services"
)

// handleServiceError translates a service-layer error into the response
// envelope. HTTP status communicates the category: 400 validation, 404 not
// found, 409 conflict or state-machine violation, 502 gateway, 500 unexpected.
func handleServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var conflictErr *services.ConflictError
	var forbiddenErr *services.ForbiddenError
	var transitionErr *models.InvalidTransitionError
	var externalErr *services.ExternalServiceError
	var signatureErr *services.SignatureError
	var amountErr *services.AmountMismatchError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": validationErr.Error(),
			},
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": notFoundErr.Error(),
			},
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    conflictErr.Code,
				"message": conflictErr.Error(),
			},
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": transitionErr.Error(),
			},
		})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": forbiddenErr.Error(),
			},
		})
	case errors.As(err, &signatureErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SIGNATURE",
				"message": signatureErr.Error(),
			},
		})
	case errors.As(err, &amountErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AMOUNT_MISMATCH",
				"message": amountErr.Error(),
			},
		})
	case errors.As(err, &externalErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXTERNAL_SERVICE_ERROR",
				"message": externalErr.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "An unexpected error occurred",
			},
		})
	}
}

// currentUser resolves the acting user from the validated token, or nil for
// an anonymous request. The users table is maintained by the auth surface;
// here it is a read-only lookup.
func currentUser(c *gin.Context) *models.User {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		return nil
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return nil
	}
	return &user
}

// parseIDParam parses a numeric URL parameter, writing a 400 response and
// returning false when it is missing or malformed
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid " + name + " parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}
