package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"review-service-server/config"
	"review-service-server/database"
	"review-service-server/models"
	"review-service-server/services"
)

// RegisterPublicReviewRoutes registers the token-addressed endpoints the
// review emails and texts point at. No session, no HTML: the click redirect
// 302s to the company's review destination and everything else is JSON for
// the externally hosted review page.
func RegisterPublicReviewRoutes(router *gin.Engine) {
	router.GET("/review/:token", handleReviewClick)
	router.GET("/unsubscribe/:token", handleUnsubscribe)

	api := router.Group("/api/v1/reviews")
	{
		api.GET("/:token", resolveReviewToken)
		api.POST("/:token", submitReview)
	}
}

func newLedger() *services.TokenLedger {
	return services.NewTokenLedger(database.DB, config.AppConfig.Review.PublicBaseURL)
}

// handleReviewClick records the click and forwards the customer to the
// company's review destination. Recording is idempotent, so scanner re-fetches
// and double clicks are harmless.
func handleReviewClick(c *gin.Context) {
	token := c.Param("token")
	ledger := newLedger()

	request, err := ledger.Resolve(token)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown review link"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve review link"})
		return
	}

	if err := ledger.RecordClick(token); err != nil {
		// The redirect still happens; losing a click metric is not worth a
		// broken customer experience.
		log.Printf("⚠️ Failed to record click for token %s: %v", token, err)
	}

	destination := config.AppConfig.Review.FallbackReviewURL
	var company models.Company
	if err := database.DB.First(&company, request.CompanyID).Error; err == nil && company.GoogleReviewLink != "" {
		destination = company.GoogleReviewLink
	}
	if destination == "" {
		c.JSON(http.StatusOK, gin.H{"message": "Thanks for your interest! Review page is not configured yet."})
		return
	}

	c.Redirect(http.StatusFound, destination)
}

// resolveReviewToken returns the request context the external review page
// renders from.
func resolveReviewToken(c *gin.Context) {
	token := c.Param("token")

	request, err := newLedger().Resolve(token)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown review link"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve review link"})
		return
	}

	var company models.Company
	database.DB.First(&company, request.CompanyID)
	var technician models.Technician
	database.DB.First(&technician, request.TechnicianID)

	c.JSON(http.StatusOK, gin.H{
		"customer_name":   request.CustomerName,
		"company_name":    company.Name,
		"technician_name": technician.Name,
		"job_type":        request.JobType,
	})
}

// submitReview captures the rating and feedback, then completes the
// lifecycle through the ledger.
func submitReview(c *gin.Context) {
	token := c.Param("token")

	var payload models.ReviewResponseCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review data", "details": err.Error()})
		return
	}

	ledger := newLedger()
	request, err := ledger.Resolve(token)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown review link"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve review link"})
		return
	}

	// One response per request; replays of the same submission are accepted
	// quietly to tolerate retried form posts.
	var existing models.ReviewResponse
	if err := database.DB.Where("review_request_id = ?", request.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Review already recorded", "response_id": existing.ID})
		return
	}

	response := models.ReviewResponse{
		ReviewRequestID: request.ID,
		CompanyID:       request.CompanyID,
		Rating:          payload.Rating,
		Feedback:        payload.Feedback,
	}
	if err := database.DB.Create(&response).Error; err != nil {
		// Two submissions racing past the existence check collide on the
		// unique index; the loser gets the same replay response as any
		// other retried form post.
		var winner models.ReviewResponse
		if ferr := database.DB.Where("review_request_id = ?", request.ID).First(&winner).Error; ferr == nil {
			c.JSON(http.StatusOK, gin.H{"message": "Review already recorded", "response_id": winner.ID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
		return
	}

	if err := ledger.RecordSubmission(token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Review saved but lifecycle update failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Thank you for your review!", "response_id": response.ID})
}

// handleUnsubscribe opts the customer out of any further follow-ups
func handleUnsubscribe(c *gin.Context) {
	token := c.Param("token")

	err := newLedger().RecordUnsubscribe(token)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown unsubscribe link"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsubscribe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You have been unsubscribed from review reminders."})
}
