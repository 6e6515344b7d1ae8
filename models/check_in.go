package models

import (
	"time"

	"gorm.io/gorm"
)

// CheckIn represents a completed service visit recorded by a technician.
// A completed check-in is what triggers review solicitation.
type CheckIn struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	CompanyID     uint       `json:"company_id" gorm:"not null;index"`
	Company       Company    `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	TechnicianID  uint       `json:"technician_id" gorm:"not null;index"`
	Technician    Technician `json:"technician,omitempty" gorm:"foreignKey:TechnicianID"`
	CustomerName  string     `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerEmail string     `json:"customer_email" gorm:"type:varchar(255)"`
	CustomerPhone string     `json:"customer_phone" gorm:"type:varchar(20)"`
	JobType       string     `json:"job_type" gorm:"type:varchar(100)"`
	Location      string     `json:"location" gorm:"type:varchar(255)"`
	Notes         string     `json:"notes" gorm:"type:text"`
	InvoiceAmount *float64   `json:"invoice_amount" gorm:"type:decimal(10,2)"`
	// CustomerSatisfied is set by the technician when the customer indicated a
	// positive experience on site.
	CustomerSatisfied *bool          `json:"customer_satisfied"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for the CheckIn model
func (CheckIn) TableName() string {
	return "check_ins"
}
