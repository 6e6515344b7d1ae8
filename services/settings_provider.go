package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"review-service-server/models"
)

// SettingsProvider is the get-or-create repository for per-tenant follow-up
// configuration.
type SettingsProvider struct {
	db *gorm.DB
}

// NewSettingsProvider creates a new settings provider
func NewSettingsProvider(db *gorm.DB) *SettingsProvider {
	return &SettingsProvider{db: db}
}

// Get returns the tenant's settings, creating the default row on first read.
// The insert is guarded by the unique index on company_id, so two concurrent
// first reads still produce exactly one row.
func (p *SettingsProvider) Get(companyID uint) (*models.ReviewFollowUpSettings, error) {
	var settings models.ReviewFollowUpSettings
	err := p.db.Where("company_id = ?", companyID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &StoreError{Op: "get follow-up settings", Err: err}
	}

	settings = models.DefaultReviewFollowUpSettings(companyID)
	if err := p.db.Create(&settings).Error; err != nil {
		// Lost the creation race: fall back to the winner's row.
		var existing models.ReviewFollowUpSettings
		if ferr := p.db.Where("company_id = ?", companyID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, &StoreError{Op: "create default follow-up settings", Err: err}
	}

	log.Printf("🆕 Created default review follow-up settings for company %d", companyID)
	return &settings, nil
}

// Update applies a patch to the tenant's settings. Delays must be
// non-negative and every enabled stage must end up with non-empty templates.
func (p *SettingsProvider) Update(companyID uint, patch models.ReviewFollowUpSettingsUpdate) (*models.ReviewFollowUpSettings, error) {
	settings, err := p.Get(companyID)
	if err != nil {
		return nil, err
	}

	applyPatch(settings, patch)

	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	if err := p.db.Save(settings).Error; err != nil {
		return nil, &StoreError{Op: "update follow-up settings", Err: err}
	}

	log.Printf("✅ Updated review follow-up settings for company %d", companyID)
	return settings, nil
}

func applyPatch(s *models.ReviewFollowUpSettings, patch models.ReviewFollowUpSettingsUpdate) {
	if patch.EnableFirstFollowUp != nil {
		s.EnableFirstFollowUp = *patch.EnableFirstFollowUp
	}
	if patch.FirstFollowUpDelayDays != nil {
		s.FirstFollowUpDelayDays = *patch.FirstFollowUpDelayDays
	}
	if patch.EnableSecondFollowUp != nil {
		s.EnableSecondFollowUp = *patch.EnableSecondFollowUp
	}
	if patch.SecondFollowUpDelayDays != nil {
		s.SecondFollowUpDelayDays = *patch.SecondFollowUpDelayDays
	}
	if patch.EnableFinalFollowUp != nil {
		s.EnableFinalFollowUp = *patch.EnableFinalFollowUp
	}
	if patch.FinalFollowUpDelayDays != nil {
		s.FinalFollowUpDelayDays = *patch.FinalFollowUpDelayDays
	}

	if patch.InitialSubject != nil {
		s.InitialSubject = *patch.InitialSubject
	}
	if patch.InitialMessage != nil {
		s.InitialMessage = *patch.InitialMessage
	}
	if patch.FirstFollowUpSubject != nil {
		s.FirstFollowUpSubject = *patch.FirstFollowUpSubject
	}
	if patch.FirstFollowUpMessage != nil {
		s.FirstFollowUpMessage = *patch.FirstFollowUpMessage
	}
	if patch.SecondFollowUpSubject != nil {
		s.SecondFollowUpSubject = *patch.SecondFollowUpSubject
	}
	if patch.SecondFollowUpMessage != nil {
		s.SecondFollowUpMessage = *patch.SecondFollowUpMessage
	}
	if patch.FinalFollowUpSubject != nil {
		s.FinalFollowUpSubject = *patch.FinalFollowUpSubject
	}
	if patch.FinalFollowUpMessage != nil {
		s.FinalFollowUpMessage = *patch.FinalFollowUpMessage
	}

	if patch.EnableEmailRequests != nil {
		s.EnableEmailRequests = *patch.EnableEmailRequests
	}
	if patch.EnableSMSRequests != nil {
		s.EnableSMSRequests = *patch.EnableSMSRequests
	}

	if patch.PreferredSendTime != nil {
		s.PreferredSendTime = *patch.PreferredSendTime
	}
	if patch.SendWeekends != nil {
		s.SendWeekends = *patch.SendWeekends
	}

	if patch.EnableSmartTiming != nil {
		s.EnableSmartTiming = *patch.EnableSmartTiming
	}
	if patch.PreferredWeekdays != nil {
		s.PreferredWeekdays = *patch.PreferredWeekdays
	}
	if patch.AvoidLateNight != nil {
		s.AvoidLateNight = *patch.AvoidLateNight
	}
	if patch.AvoidHolidays != nil {
		s.AvoidHolidays = *patch.AvoidHolidays
	}

	if patch.ServiceTypeFilter != nil {
		s.ServiceTypeFilter = *patch.ServiceTypeFilter
	}
	if patch.MinimumInvoiceAmount != nil {
		s.MinimumInvoiceAmount = *patch.MinimumInvoiceAmount
	}
	if patch.PositiveExperienceOnly != nil {
		s.PositiveExperienceOnly = *patch.PositiveExperienceOnly
	}
}

func validateSettings(s *models.ReviewFollowUpSettings) error {
	type delay struct {
		field string
		value int
	}
	for _, d := range []delay{
		{"first_follow_up_delay_days", s.FirstFollowUpDelayDays},
		{"second_follow_up_delay_days", s.SecondFollowUpDelayDays},
		{"final_follow_up_delay_days", s.FinalFollowUpDelayDays},
	} {
		if d.value < 0 {
			return &ValidationError{Field: d.field, Reason: "delay must be a non-negative number of days"}
		}
	}

	if _, _, err := ParsePreferredTime(s.PreferredSendTime); err != nil {
		return &ValidationError{Field: "preferred_send_time", Reason: err.Error()}
	}

	type stageTemplates struct {
		stage   models.FollowUpStage
		enabled bool
	}
	for _, st := range []stageTemplates{
		{models.StageInitial, true},
		{models.StageFirst, s.EnableFirstFollowUp},
		{models.StageSecond, s.EnableSecondFollowUp},
		{models.StageFinal, s.EnableFinalFollowUp},
	} {
		if !st.enabled {
			continue
		}
		subject, message := s.StageTemplates(st.stage)
		if strings.TrimSpace(subject) == "" {
			return &ValidationError{Field: string(st.stage) + "_subject", Reason: "subject is required while the stage is enabled"}
		}
		if strings.TrimSpace(message) == "" {
			return &ValidationError{Field: string(st.stage) + "_message", Reason: "message is required while the stage is enabled"}
		}
	}

	for _, day := range s.PreferredWeekdays {
		if day < 0 || day > 6 {
			return &ValidationError{Field: "preferred_weekdays", Reason: "weekdays must be 0 (Sunday) through 6 (Saturday)"}
		}
	}

	return nil
}

// ParsePreferredTime parses an "HH:MM" preferred send time
func ParsePreferredTime(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}
