package models

import (
	"time"

	"gorm.io/gorm"
)

// Company represents a tenant business account
type Company struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name" gorm:"type:varchar(255);not null"`
	Email            string         `json:"email" gorm:"type:varchar(255)"`
	PhoneNumber      string         `json:"phone_number" gorm:"type:varchar(20)"`
	GoogleReviewLink string         `json:"google_review_link" gorm:"type:varchar(500)"`
	// No default tag: gorm skips zero-valued fields that carry one on
	// insert, which would silently activate a company created inactive.
	IsActive  bool           `json:"is_active" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for the Company model
func (Company) TableName() string {
	return "companies"
}
