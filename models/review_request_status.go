package models

import (
	"time"
)

// FollowUpStage identifies one step of the review solicitation lifecycle
type FollowUpStage string

const (
	StageInitial FollowUpStage = "initial"
	StageFirst   FollowUpStage = "first"
	StageSecond  FollowUpStage = "second"
	StageFinal   FollowUpStage = "final"
)

// FollowUpState represents the overall lifecycle state of a review solicitation
type FollowUpState string

const (
	FollowUpPending      FollowUpState = "pending"
	FollowUpInProgress   FollowUpState = "in_progress"
	FollowUpCompleted    FollowUpState = "completed"
	FollowUpUnsubscribed FollowUpState = "unsubscribed"
)

// ReviewRequestStatus is the 1:1 state-machine record for a ReviewRequest.
// Each stage's sent timestamp is set at most once, and only through
// RequestTracker.AdvanceStage; completed and unsubscribed are terminal.
type ReviewRequestStatus struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	ReviewRequestID uint          `json:"review_request_id" gorm:"not null;uniqueIndex"`
	ReviewRequest   ReviewRequest `json:"review_request,omitempty" gorm:"foreignKey:ReviewRequestID"`
	CompanyID       uint          `json:"company_id" gorm:"not null;index"`
	TechnicianID    uint          `json:"technician_id" gorm:"not null"`
	CheckInID       *uint         `json:"check_in_id"`

	// Contact snapshot taken at creation time
	CustomerName  string `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerEmail string `json:"customer_email" gorm:"type:varchar(255)"`
	CustomerPhone string `json:"customer_phone" gorm:"type:varchar(20)"`

	InitialRequestSent   bool       `json:"initial_request_sent" gorm:"not null;default:false"`
	InitialRequestSentAt *time.Time `json:"initial_request_sent_at"`
	FirstFollowUpSent    bool       `json:"first_follow_up_sent" gorm:"not null;default:false"`
	FirstFollowUpSentAt  *time.Time `json:"first_follow_up_sent_at"`
	SecondFollowUpSent   bool       `json:"second_follow_up_sent" gorm:"not null;default:false"`
	SecondFollowUpSentAt *time.Time `json:"second_follow_up_sent_at"`
	FinalFollowUpSent    bool       `json:"final_follow_up_sent" gorm:"not null;default:false"`
	FinalFollowUpSentAt  *time.Time `json:"final_follow_up_sent_at"`

	LinkClicked       bool       `json:"link_clicked" gorm:"not null;default:false"`
	LinkClickedAt     *time.Time `json:"link_clicked_at"`
	ReviewSubmitted   bool       `json:"review_submitted" gorm:"not null;default:false"`
	ReviewSubmittedAt *time.Time `json:"review_submitted_at"`
	UnsubscribedAt    *time.Time `json:"unsubscribed_at"`
	CompletedAt       *time.Time `json:"completed_at"`

	Status    FollowUpState `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the ReviewRequestStatus model
func (ReviewRequestStatus) TableName() string {
	return "review_request_statuses"
}

// IsTerminal reports whether no further stage may ever be sent
func (s *ReviewRequestStatus) IsTerminal() bool {
	return s.Status == FollowUpCompleted || s.Status == FollowUpUnsubscribed
}

// StageSent reports whether the given stage has already been sent
func (s *ReviewRequestStatus) StageSent(stage FollowUpStage) bool {
	switch stage {
	case StageInitial:
		return s.InitialRequestSent
	case StageFirst:
		return s.FirstFollowUpSent
	case StageSecond:
		return s.SecondFollowUpSent
	case StageFinal:
		return s.FinalFollowUpSent
	}
	return false
}

// StageSentAt returns the sent timestamp for the given stage, or nil
func (s *ReviewRequestStatus) StageSentAt(stage FollowUpStage) *time.Time {
	switch stage {
	case StageInitial:
		return s.InitialRequestSentAt
	case StageFirst:
		return s.FirstFollowUpSentAt
	case StageSecond:
		return s.SecondFollowUpSentAt
	case StageFinal:
		return s.FinalFollowUpSentAt
	}
	return nil
}
