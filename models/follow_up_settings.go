package models

import (
	"time"
)

// Default templates used when a tenant has no stored settings yet
const (
	DefaultInitialSubject = "How was your service with {{companyName}}?"
	DefaultInitialMessage = "Hi {{customerName}}, thank you for choosing {{companyName}}! " +
		"{{technicianName}} recently completed your {{serviceType}} service. " +
		"We would love to hear about your experience: {{reviewLink}}"

	DefaultFirstSubject = "We'd still love your feedback, {{customerName}}"
	DefaultFirstMessage = "Hi {{customerName}}, just a quick reminder from {{companyName}}. " +
		"Sharing your experience only takes a minute: {{reviewLink}}"

	DefaultSecondSubject = "Your opinion matters to {{companyName}}"
	DefaultSecondMessage = "Hi {{customerName}}, we noticed you haven't had a chance to leave a review yet. " +
		"Your feedback helps us and your neighbors: {{reviewLink}}"

	DefaultFinalSubject = "Last chance to share your feedback"
	DefaultFinalMessage = "Hi {{customerName}}, this is our final note about your recent service with {{companyName}}. " +
		"If you have a moment, we'd appreciate your review: {{reviewLink}}"
)

// ReviewFollowUpSettings holds the per-tenant follow-up policy. One row per
// company, created lazily with defaults on first read.
type ReviewFollowUpSettings struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	CompanyID uint `json:"company_id" gorm:"not null;uniqueIndex"`

	// Stage toggles and delays. The initial request has no delay: it is
	// attempted on the first eligible pass after creation.
	EnableFirstFollowUp     bool `json:"enable_first_follow_up" gorm:"not null;default:true"`
	FirstFollowUpDelayDays  int  `json:"first_follow_up_delay_days" gorm:"not null;default:3"`
	EnableSecondFollowUp    bool `json:"enable_second_follow_up" gorm:"not null;default:true"`
	SecondFollowUpDelayDays int  `json:"second_follow_up_delay_days" gorm:"not null;default:5"`
	EnableFinalFollowUp     bool `json:"enable_final_follow_up" gorm:"not null;default:false"`
	FinalFollowUpDelayDays  int  `json:"final_follow_up_delay_days" gorm:"not null;default:7"`

	// Per-stage message templates
	InitialSubject        string `json:"initial_subject" gorm:"type:varchar(255)"`
	InitialMessage        string `json:"initial_message" gorm:"type:text"`
	FirstFollowUpSubject  string `json:"first_follow_up_subject" gorm:"type:varchar(255)"`
	FirstFollowUpMessage  string `json:"first_follow_up_message" gorm:"type:text"`
	SecondFollowUpSubject string `json:"second_follow_up_subject" gorm:"type:varchar(255)"`
	SecondFollowUpMessage string `json:"second_follow_up_message" gorm:"type:text"`
	FinalFollowUpSubject  string `json:"final_follow_up_subject" gorm:"type:varchar(255)"`
	FinalFollowUpMessage  string `json:"final_follow_up_message" gorm:"type:text"`

	// Channels
	EnableEmailRequests bool `json:"enable_email_requests" gorm:"not null;default:true"`
	EnableSMSRequests   bool `json:"enable_sms_requests" gorm:"not null;default:false"`

	// Timing policy
	PreferredSendTime string `json:"preferred_send_time" gorm:"type:varchar(5);not null;default:'10:00'"`
	SendWeekends      bool   `json:"send_weekends" gorm:"not null;default:false"`

	// Smart timing preferences
	EnableSmartTiming bool           `json:"enable_smart_timing" gorm:"not null;default:false"`
	PreferredWeekdays []time.Weekday `json:"preferred_weekdays" gorm:"serializer:json"`
	AvoidLateNight    bool           `json:"avoid_late_night" gorm:"not null;default:true"`
	AvoidHolidays     bool           `json:"avoid_holidays" gorm:"not null;default:false"`

	// Targeting filters, evaluated once at request-creation time
	ServiceTypeFilter      []string `json:"service_type_filter" gorm:"serializer:json"`
	MinimumInvoiceAmount   float64  `json:"minimum_invoice_amount" gorm:"type:decimal(10,2);not null;default:0"`
	PositiveExperienceOnly bool     `json:"positive_experience_only" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ReviewFollowUpSettings model
func (ReviewFollowUpSettings) TableName() string {
	return "review_follow_up_settings"
}

// DefaultReviewFollowUpSettings returns the fixed defaults used when a tenant
// reads its settings for the first time.
func DefaultReviewFollowUpSettings(companyID uint) ReviewFollowUpSettings {
	return ReviewFollowUpSettings{
		CompanyID:               companyID,
		EnableFirstFollowUp:     true,
		FirstFollowUpDelayDays:  3,
		EnableSecondFollowUp:    true,
		SecondFollowUpDelayDays: 5,
		EnableFinalFollowUp:     false,
		FinalFollowUpDelayDays:  7,
		InitialSubject:          DefaultInitialSubject,
		InitialMessage:          DefaultInitialMessage,
		FirstFollowUpSubject:    DefaultFirstSubject,
		FirstFollowUpMessage:    DefaultFirstMessage,
		SecondFollowUpSubject:   DefaultSecondSubject,
		SecondFollowUpMessage:   DefaultSecondMessage,
		FinalFollowUpSubject:    DefaultFinalSubject,
		FinalFollowUpMessage:    DefaultFinalMessage,
		EnableEmailRequests:     true,
		EnableSMSRequests:       false,
		PreferredSendTime:       "10:00",
		SendWeekends:            false,
		EnableSmartTiming:       false,
		AvoidLateNight:          true,
		AvoidHolidays:           false,
	}
}

// StageEnabled reports whether the given follow-up stage is enabled. The
// initial request is always enabled.
func (s *ReviewFollowUpSettings) StageEnabled(stage FollowUpStage) bool {
	switch stage {
	case StageInitial:
		return true
	case StageFirst:
		return s.EnableFirstFollowUp
	case StageSecond:
		return s.EnableSecondFollowUp
	case StageFinal:
		return s.EnableFinalFollowUp
	}
	return false
}

// StageDelayDays returns the configured delay for a follow-up stage
func (s *ReviewFollowUpSettings) StageDelayDays(stage FollowUpStage) int {
	switch stage {
	case StageFirst:
		return s.FirstFollowUpDelayDays
	case StageSecond:
		return s.SecondFollowUpDelayDays
	case StageFinal:
		return s.FinalFollowUpDelayDays
	}
	return 0
}

// StageTemplates returns the subject and message templates for a stage
func (s *ReviewFollowUpSettings) StageTemplates(stage FollowUpStage) (subject, message string) {
	switch stage {
	case StageInitial:
		return s.InitialSubject, s.InitialMessage
	case StageFirst:
		return s.FirstFollowUpSubject, s.FirstFollowUpMessage
	case StageSecond:
		return s.SecondFollowUpSubject, s.SecondFollowUpMessage
	case StageFinal:
		return s.FinalFollowUpSubject, s.FinalFollowUpMessage
	}
	return "", ""
}

// ReviewFollowUpSettingsUpdate is the patch structure for tenant configuration
// updates. Nil fields are left unchanged.
type ReviewFollowUpSettingsUpdate struct {
	EnableFirstFollowUp     *bool   `json:"enable_first_follow_up"`
	FirstFollowUpDelayDays  *int    `json:"first_follow_up_delay_days"`
	EnableSecondFollowUp    *bool   `json:"enable_second_follow_up"`
	SecondFollowUpDelayDays *int    `json:"second_follow_up_delay_days"`
	EnableFinalFollowUp     *bool   `json:"enable_final_follow_up"`
	FinalFollowUpDelayDays  *int    `json:"final_follow_up_delay_days"`

	InitialSubject        *string `json:"initial_subject"`
	InitialMessage        *string `json:"initial_message"`
	FirstFollowUpSubject  *string `json:"first_follow_up_subject"`
	FirstFollowUpMessage  *string `json:"first_follow_up_message"`
	SecondFollowUpSubject *string `json:"second_follow_up_subject"`
	SecondFollowUpMessage *string `json:"second_follow_up_message"`
	FinalFollowUpSubject  *string `json:"final_follow_up_subject"`
	FinalFollowUpMessage  *string `json:"final_follow_up_message"`

	EnableEmailRequests *bool `json:"enable_email_requests"`
	EnableSMSRequests   *bool `json:"enable_sms_requests"`

	PreferredSendTime *string `json:"preferred_send_time"`
	SendWeekends      *bool   `json:"send_weekends"`

	EnableSmartTiming *bool           `json:"enable_smart_timing"`
	PreferredWeekdays *[]time.Weekday `json:"preferred_weekdays"`
	AvoidLateNight    *bool           `json:"avoid_late_night"`
	AvoidHolidays     *bool           `json:"avoid_holidays"`

	ServiceTypeFilter      *[]string `json:"service_type_filter"`
	MinimumInvoiceAmount   *float64  `json:"minimum_invoice_amount"`
	PositiveExperienceOnly *bool     `json:"positive_experience_only"`
}
