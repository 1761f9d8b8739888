package controllers

import (
	"errors"
	"net/http"

	"github.com/freightdesk/backend/internal/logger"
	"github.com/freightdesk/backend/internal/models"
	"github.com/freightdesk/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated identity from the gin context.
func currentUser(c *gin.Context) (uint, models.UserRole, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, "", false
	}
	role, _ := c.Get("userRole")
	r, _ := role.(models.UserRole)
	return userID.(uint), r, true
}

// respondServiceError maps the service error taxonomy to HTTP statuses.
// Unexpected errors are logged and surfaced as a generic 500.
func respondServiceError(c *gin.Context, err error, component string) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.WithError(err, component).Error("Unexpected service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
