package models

import (
	"time"

	"gorm.io/gorm"
)

// ReviewResponse represents the rating and feedback a customer submitted
// through the public review page.
type ReviewResponse struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	ReviewRequestID uint           `json:"review_request_id" gorm:"not null;uniqueIndex"`
	ReviewRequest   ReviewRequest  `json:"review_request,omitempty" gorm:"foreignKey:ReviewRequestID"`
	CompanyID       uint           `json:"company_id" gorm:"not null;index"`
	Rating          int            `json:"rating" gorm:"type:int;not null;check:rating >= 1 AND rating <= 5"`
	Feedback        string         `json:"feedback" gorm:"type:text"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for the ReviewResponse model
func (ReviewResponse) TableName() string {
	return "review_responses"
}

// ReviewResponseCreate represents the public submission payload
type ReviewResponseCreate struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}
