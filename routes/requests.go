package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"review-service-server/database"
	"review-service-server/models"
	"review-service-server/services"
)

// RegisterReviewRequestRoutes registers the tenant-facing review request API
func RegisterReviewRequestRoutes(router *gin.RouterGroup) {
	requestRoutes := router.Group("/review-requests")
	{
		requestRoutes.POST("/", createReviewRequest)
		requestRoutes.POST("/from-check-in/:checkInId", createReviewRequestFromCheckIn)
		requestRoutes.GET("/", listReviewRequests)
		requestRoutes.GET("/:id/status", getReviewRequestStatus)
	}
}

// createReviewRequest manually solicits a review for a customer, bypassing
// the check-in targeting filters (an admin decided to ask).
func createReviewRequest(c *gin.Context) {
	companyID := c.GetUint("company_id")

	var payload models.ReviewRequestCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if payload.CustomerEmail == "" && payload.CustomerPhone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one of customer_email or customer_phone is required"})
		return
	}

	var technician models.Technician
	if err := database.DB.Where("id = ? AND company_id = ?", payload.TechnicianID, companyID).First(&technician).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Technician not found"})
		return
	}

	tracker := services.NewRequestTracker(database.DB)

	method := models.MethodEmail
	if payload.CustomerEmail == "" {
		method = models.MethodSMS
	} else if payload.CustomerPhone != "" {
		method = models.MethodBoth
	}

	request, err := tracker.CreateRequest(
		services.CustomerInfo{Name: payload.CustomerName, Email: payload.CustomerEmail, Phone: payload.CustomerPhone},
		payload.TechnicianID,
		companyID,
		payload.JobType,
		method,
		payload.CustomMessage,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review request"})
		return
	}

	status, err := tracker.CreateStatus(request, payload.CheckInID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Review request created but status tracking failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request, "status": status})
}

// createReviewRequestFromCheckIn solicits a review for a completed visit,
// subject to the tenant's targeting filters.
func createReviewRequestFromCheckIn(c *gin.Context) {
	companyID := c.GetUint("company_id")

	checkInID, err := strconv.Atoi(c.Param("checkInId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check-in ID"})
		return
	}

	var checkIn models.CheckIn
	if err := database.DB.Where("id = ? AND company_id = ?", checkInID, companyID).First(&checkIn).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Check-in not found"})
		return
	}

	provider := services.NewSettingsProvider(database.DB)
	settings, err := provider.Get(companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	tracker := services.NewRequestTracker(database.DB)
	request, status, err := tracker.CreateFromCheckIn(&checkIn, settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review request"})
		return
	}
	if request == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Check-in does not match the review targeting filters", "created": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request, "status": status, "created": true})
}

// listReviewRequests returns the tenant's requests with their lifecycle rows
func listReviewRequests(c *gin.Context) {
	companyID := c.GetUint("company_id")

	var requests []models.ReviewRequest
	query := database.DB.Where("company_id = ?", companyID).Order("created_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Limit(200).Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// getReviewRequestStatus returns the lifecycle record for one request
func getReviewRequestStatus(c *gin.Context) {
	companyID := c.GetUint("company_id")

	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var status models.ReviewRequestStatus
	err = database.DB.Where("review_request_id = ? AND company_id = ?", requestID, companyID).First(&status).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review request status not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status"})
		}
		return
	}

	c.JSON(http.StatusOK, status)
}
