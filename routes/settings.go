package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"review-service-server/database"
	"review-service-server/models"
	"review-service-server/services"
)

// RegisterSettingsRoutes registers the tenant follow-up configuration API
func RegisterSettingsRoutes(router *gin.RouterGroup) {
	settingsRoutes := router.Group("/settings")
	{
		settingsRoutes.GET("/review-follow-up", getReviewFollowUpSettings)
		settingsRoutes.PUT("/review-follow-up", updateReviewFollowUpSettings)
	}
}

// getReviewFollowUpSettings returns the tenant's settings, creating defaults
// on first read.
func getReviewFollowUpSettings(c *gin.Context) {
	companyID := c.GetUint("company_id")

	provider := services.NewSettingsProvider(database.DB)
	settings, err := provider.Get(companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// updateReviewFollowUpSettings applies a partial settings update
func updateReviewFollowUpSettings(c *gin.Context) {
	companyID := c.GetUint("company_id")

	var patch models.ReviewFollowUpSettingsUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings data", "details": err.Error()})
		return
	}

	provider := services.NewSettingsProvider(database.DB)
	settings, err := provider.Update(companyID, patch)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}
