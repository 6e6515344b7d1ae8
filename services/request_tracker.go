package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"review-service-server/models"
)

// EventKind identifies a customer engagement event arriving through the
// public review endpoints.
type EventKind string

const (
	EventClick       EventKind = "click"
	EventSubmit      EventKind = "submit"
	EventUnsubscribe EventKind = "unsubscribe"
)

// RequestTracker owns all persistence-facing operations over ReviewRequest
// and ReviewRequestStatus rows. Stage flags and engagement flags are only
// ever mutated here, through conditional updates, so concurrent
// reconciliation passes and retried webhooks stay idempotent.
type RequestTracker struct {
	db *gorm.DB
}

// NewRequestTracker creates a new request tracker
func NewRequestTracker(db *gorm.DB) *RequestTracker {
	return &RequestTracker{db: db}
}

// CustomerInfo is the contact snapshot captured when a request is created
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

// CreateRequest creates a review request with a freshly issued token
func (t *RequestTracker) CreateRequest(customer CustomerInfo, technicianID, companyID uint, jobType string, method models.ReviewRequestMethod, customMessage string) (*models.ReviewRequest, error) {
	token, err := newReviewToken()
	if err != nil {
		return nil, err
	}

	request := models.ReviewRequest{
		CompanyID:     companyID,
		TechnicianID:  technicianID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		JobType:       jobType,
		Method:        method,
		CustomMessage: customMessage,
		Token:         token,
		Status:        models.ReviewRequestPending,
	}

	if err := t.db.Create(&request).Error; err != nil {
		return nil, &StoreError{Op: "create review request", Err: err}
	}
	return &request, nil
}

// CreateStatus creates the 1:1 lifecycle record for a request with all stage
// flags cleared.
func (t *RequestTracker) CreateStatus(request *models.ReviewRequest, checkInID *uint) (*models.ReviewRequestStatus, error) {
	status := models.ReviewRequestStatus{
		ReviewRequestID: request.ID,
		CompanyID:       request.CompanyID,
		TechnicianID:    request.TechnicianID,
		CheckInID:       checkInID,
		CustomerName:    request.CustomerName,
		CustomerEmail:   request.CustomerEmail,
		CustomerPhone:   request.CustomerPhone,
		Status:          models.FollowUpPending,
	}

	if err := t.db.Create(&status).Error; err != nil {
		return nil, &StoreError{Op: "create review request status", Err: err}
	}
	return &status, nil
}

// CreateFromCheckIn creates a request+status pair for a completed visit,
// applying the tenant's targeting filters. Filters are evaluated exactly once
// here; reconciliation never revisits them. Returns (nil, nil, nil) when the
// visit is filtered out.
func (t *RequestTracker) CreateFromCheckIn(checkIn *models.CheckIn, settings *models.ReviewFollowUpSettings) (*models.ReviewRequest, *models.ReviewRequestStatus, error) {
	if !passesTargeting(checkIn, settings) {
		log.Printf("⏭️ Check-in %d filtered out of review solicitation for company %d", checkIn.ID, checkIn.CompanyID)
		return nil, nil, nil
	}

	request, err := t.CreateRequest(
		CustomerInfo{Name: checkIn.CustomerName, Email: checkIn.CustomerEmail, Phone: checkIn.CustomerPhone},
		checkIn.TechnicianID,
		checkIn.CompanyID,
		checkIn.JobType,
		methodForSettings(settings, checkIn),
		"",
	)
	if err != nil {
		return nil, nil, err
	}

	status, err := t.CreateStatus(request, &checkIn.ID)
	if err != nil {
		return nil, nil, err
	}
	return request, status, nil
}

// passesTargeting applies the service-type allow-list, minimum invoice amount
// and positive-experience-only filters.
func passesTargeting(checkIn *models.CheckIn, settings *models.ReviewFollowUpSettings) bool {
	if len(settings.ServiceTypeFilter) > 0 {
		allowed := false
		for _, jobType := range settings.ServiceTypeFilter {
			if jobType == checkIn.JobType {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	if settings.MinimumInvoiceAmount > 0 {
		if checkIn.InvoiceAmount == nil || *checkIn.InvoiceAmount < settings.MinimumInvoiceAmount {
			return false
		}
	}

	if settings.PositiveExperienceOnly {
		if checkIn.CustomerSatisfied == nil || !*checkIn.CustomerSatisfied {
			return false
		}
	}

	return true
}

func methodForSettings(settings *models.ReviewFollowUpSettings, checkIn *models.CheckIn) models.ReviewRequestMethod {
	email := settings.EnableEmailRequests && checkIn.CustomerEmail != ""
	sms := settings.EnableSMSRequests && checkIn.CustomerPhone != ""
	switch {
	case email && sms:
		return models.MethodBoth
	case sms:
		return models.MethodSMS
	default:
		return models.MethodEmail
	}
}

// GetRequest loads a review request by ID
func (t *RequestTracker) GetRequest(id uint) (*models.ReviewRequest, error) {
	var request models.ReviewRequest
	if err := t.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "get review request", Err: err}
	}
	return &request, nil
}

// GetRequestByToken loads a review request by its public token
func (t *RequestTracker) GetRequestByToken(token string) (*models.ReviewRequest, error) {
	var request models.ReviewRequest
	if err := t.db.Where("token = ?", token).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "get review request by token", Err: err}
	}
	return &request, nil
}

// GetStatus loads a status row by ID
func (t *RequestTracker) GetStatus(id uint) (*models.ReviewRequestStatus, error) {
	var status models.ReviewRequestStatus
	if err := t.db.First(&status, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "get review request status", Err: err}
	}
	return &status, nil
}

// ListOutstanding returns every status for the company that is neither
// completed nor unsubscribed.
func (t *RequestTracker) ListOutstanding(companyID uint) ([]models.ReviewRequestStatus, error) {
	var statuses []models.ReviewRequestStatus
	err := t.db.
		Where("company_id = ? AND status NOT IN ?", companyID,
			[]models.FollowUpState{models.FollowUpCompleted, models.FollowUpUnsubscribed}).
		Order("id asc").
		Find(&statuses).Error
	if err != nil {
		return nil, &StoreError{Op: "list outstanding statuses", Err: err}
	}
	return statuses, nil
}

// CompaniesWithOutstanding returns the IDs of active companies that have at
// least one outstanding status, so a reconciliation pass only visits tenants
// with work to do.
func (t *RequestTracker) CompaniesWithOutstanding() ([]uint, error) {
	var ids []uint
	err := t.db.Model(&models.ReviewRequestStatus{}).
		Distinct("review_request_statuses.company_id").
		Joins("JOIN companies ON companies.id = review_request_statuses.company_id AND companies.is_active = ? AND companies.deleted_at IS NULL", true).
		Where("review_request_statuses.status NOT IN ?",
			[]models.FollowUpState{models.FollowUpCompleted, models.FollowUpUnsubscribed}).
		Pluck("review_request_statuses.company_id", &ids).Error
	if err != nil {
		return nil, &StoreError{Op: "list companies with outstanding statuses", Err: err}
	}
	return ids, nil
}

// stageColumns maps a stage to its flag and timestamp columns
func stageColumns(stage models.FollowUpStage) (sentCol, sentAtCol string) {
	switch stage {
	case models.StageInitial:
		return "initial_request_sent", "initial_request_sent_at"
	case models.StageFirst:
		return "first_follow_up_sent", "first_follow_up_sent_at"
	case models.StageSecond:
		return "second_follow_up_sent", "second_follow_up_sent_at"
	case models.StageFinal:
		return "final_follow_up_sent", "final_follow_up_sent_at"
	}
	return "", ""
}

// AdvanceStage marks a stage as sent. The update is conditional on the stage
// flag still being clear, so under concurrent passes exactly one caller wins;
// the rest get ErrStageConflict. A pending record moves to in_progress on its
// first advance.
func (t *RequestTracker) AdvanceStage(statusID uint, stage models.FollowUpStage, now time.Time) (*models.ReviewRequestStatus, error) {
	sentCol, sentAtCol := stageColumns(stage)
	if sentCol == "" {
		return nil, &ValidationError{Field: "stage", Reason: "unknown stage " + string(stage)}
	}

	res := t.db.Model(&models.ReviewRequestStatus{}).
		Where("id = ? AND "+sentCol+" = ?", statusID, false).
		Updates(map[string]interface{}{
			sentCol:      true,
			sentAtCol:    now,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, &StoreError{Op: "advance stage", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := t.db.Model(&models.ReviewRequestStatus{}).Where("id = ?", statusID).Count(&count).Error; err != nil {
			return nil, &StoreError{Op: "advance stage", Err: err}
		}
		if count == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrStageConflict
	}

	// First advance promotes the record out of pending. Best effort: losing
	// this race just means another advance already promoted it.
	t.db.Model(&models.ReviewRequestStatus{}).
		Where("id = ? AND status = ?", statusID, models.FollowUpPending).
		Update("status", models.FollowUpInProgress)

	return t.GetStatus(statusID)
}

// MarkRequestSent flips the request-level delivery status after any stage
// goes out successfully.
func (t *RequestTracker) MarkRequestSent(requestID uint, now time.Time) error {
	err := t.db.Model(&models.ReviewRequest{}).
		Where("id = ?", requestID).
		Updates(map[string]interface{}{
			"status":  models.ReviewRequestSent,
			"sent_at": now,
		}).Error
	if err != nil {
		return &StoreError{Op: "mark request sent", Err: err}
	}
	return nil
}

// MarkRequestFailed records that every channel failed for the request. The
// stage itself stays un-sent, so the next pass retries.
func (t *RequestTracker) MarkRequestFailed(requestID uint) error {
	err := t.db.Model(&models.ReviewRequest{}).
		Where("id = ? AND status = ?", requestID, models.ReviewRequestPending).
		Update("status", models.ReviewRequestFailed).Error
	if err != nil {
		return &StoreError{Op: "mark request failed", Err: err}
	}
	return nil
}

// RecordEvent records a click, submission or unsubscribe for the request
// behind the token. Events are idempotent: replaying one that was already
// recorded is a no-op, never an error.
func (t *RequestTracker) RecordEvent(token string, kind EventKind) error {
	request, err := t.GetRequestByToken(token)
	if err != nil {
		return err
	}

	now := time.Now()
	var res *gorm.DB

	switch kind {
	case EventClick:
		res = t.db.Model(&models.ReviewRequestStatus{}).
			Where("review_request_id = ? AND link_clicked = ?", request.ID, false).
			Updates(map[string]interface{}{
				"link_clicked":    true,
				"link_clicked_at": now,
			})
	case EventSubmit:
		res = t.db.Model(&models.ReviewRequestStatus{}).
			Where("review_request_id = ? AND review_submitted = ?", request.ID, false).
			Updates(map[string]interface{}{
				"review_submitted":    true,
				"review_submitted_at": now,
				"status":              models.FollowUpCompleted,
				"completed_at":        now,
			})
	case EventUnsubscribe:
		// Completed stays completed: an opt-out after a submitted review
		// changes nothing, there is nothing left to stop sending.
		res = t.db.Model(&models.ReviewRequestStatus{}).
			Where("review_request_id = ? AND unsubscribed_at IS NULL AND status <> ?",
				request.ID, models.FollowUpCompleted).
			Updates(map[string]interface{}{
				"unsubscribed_at": now,
				"status":          models.FollowUpUnsubscribed,
			})
	default:
		return &ValidationError{Field: "kind", Reason: "unknown event " + string(kind)}
	}

	if res.Error != nil {
		return &StoreError{Op: "record " + string(kind), Err: res.Error}
	}
	if res.RowsAffected == 0 {
		// Already recorded, or the status row never existed. Either way the
		// retried webhook gets a clean response.
		return nil
	}

	log.Printf("📬 Recorded %s event for review request %d", kind, request.ID)
	return nil
}
