package models

import (
	"time"

	"gorm.io/gorm"
)

// ReviewRequestStatusValue represents the delivery status of a review request
type ReviewRequestStatusValue string

const (
	ReviewRequestPending ReviewRequestStatusValue = "pending"
	ReviewRequestSent    ReviewRequestStatusValue = "sent"
	ReviewRequestFailed  ReviewRequestStatusValue = "failed"
)

// ReviewRequestMethod represents the delivery method for a review request
type ReviewRequestMethod string

const (
	MethodEmail ReviewRequestMethod = "email"
	MethodSMS   ReviewRequestMethod = "sms"
	MethodBoth  ReviewRequestMethod = "both"
)

// ReviewRequest represents one review solicitation for one completed service visit
type ReviewRequest struct {
	ID            uint                     `json:"id" gorm:"primaryKey"`
	CompanyID     uint                     `json:"company_id" gorm:"not null;index"`
	Company       Company                  `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	TechnicianID  uint                     `json:"technician_id" gorm:"not null"`
	Technician    Technician               `json:"technician,omitempty" gorm:"foreignKey:TechnicianID"`
	CustomerName  string                   `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerEmail string                   `json:"customer_email" gorm:"type:varchar(255)"`
	CustomerPhone string                   `json:"customer_phone" gorm:"type:varchar(20)"`
	Method        ReviewRequestMethod      `json:"method" gorm:"type:varchar(10);not null;default:'email'"`
	JobType       string                   `json:"job_type" gorm:"type:varchar(100)"`
	CustomMessage string                   `json:"custom_message" gorm:"type:text"`
	// Token is issued once at creation and never reused or reassigned.
	Token     string                   `json:"token" gorm:"type:varchar(64);not null;uniqueIndex"`
	Status    ReviewRequestStatusValue `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	SentAt    *time.Time               `json:"sent_at"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
	DeletedAt gorm.DeletedAt           `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for the ReviewRequest model
func (ReviewRequest) TableName() string {
	return "review_requests"
}

// ReviewRequestCreate represents the request structure for manually creating a review request
type ReviewRequestCreate struct {
	CheckInID     *uint  `json:"check_in_id"`
	TechnicianID  uint   `json:"technician_id" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	JobType       string `json:"job_type"`
	CustomMessage string `json:"custom_message"`
}

// HasEmail reports whether the request carries an email contact
func (r *ReviewRequest) HasEmail() bool {
	return r.CustomerEmail != ""
}

// HasPhone reports whether the request carries a phone contact
func (r *ReviewRequest) HasPhone() bool {
	return r.CustomerPhone != ""
}
