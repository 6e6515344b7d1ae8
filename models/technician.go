package models

import (
	"time"

	"gorm.io/gorm"
)

// Technician represents a field technician belonging to a company
type Technician struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CompanyID   uint           `json:"company_id" gorm:"not null;index"`
	Company     Company        `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Email       string         `json:"email" gorm:"type:varchar(255)"`
	PhoneNumber string         `json:"phone_number" gorm:"type:varchar(20)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for the Technician model
func (Technician) TableName() string {
	return "technicians"
}
