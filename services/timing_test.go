package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"review-service-server/models"
)

func timingSettings() *models.ReviewFollowUpSettings {
	s := models.DefaultReviewFollowUpSettings(1)
	return &s
}

// date builds a local timestamp; 2025-06-02 is a Monday.
func date(day int, hour, minute int) time.Time {
	return time.Date(2025, 6, day, hour, minute, 0, 0, time.UTC)
}

func TestIsEligibleNow_WeekendsBlockedByDefault(t *testing.T) {
	s := timingSettings()

	saturday := date(7, 10, 30)
	sunday := date(8, 10, 30)

	assert.False(t, IsEligibleNow(s, saturday, nil))
	assert.False(t, IsEligibleNow(s, sunday, nil))
}

func TestIsEligibleNow_WeekendOverridesEverything(t *testing.T) {
	s := timingSettings()
	s.EnableSmartTiming = true
	s.PreferredWeekdays = []time.Weekday{time.Saturday}

	// sendWeekends=false wins even when smart timing prefers Saturday
	assert.False(t, IsEligibleNow(s, date(7, 12, 0), nil))

	s.SendWeekends = true
	assert.True(t, IsEligibleNow(s, date(7, 12, 0), nil))
}

func TestIsEligibleNow_SimpleModeWindow(t *testing.T) {
	s := timingSettings() // preferred 10:00

	assert.True(t, IsEligibleNow(s, date(2, 10, 0), nil))
	assert.True(t, IsEligibleNow(s, date(2, 8, 0), nil))
	assert.True(t, IsEligibleNow(s, date(2, 12, 59), nil))
	assert.False(t, IsEligibleNow(s, date(2, 7, 59), nil))
	assert.False(t, IsEligibleNow(s, date(2, 13, 0), nil))
}

func TestIsEligibleNow_SimpleModeMinuteGate(t *testing.T) {
	s := timingSettings()
	s.PreferredSendTime = "10:30"

	// Inside the preferred hour the preferred minute must have passed
	assert.False(t, IsEligibleNow(s, date(2, 10, 15), nil))
	assert.True(t, IsEligibleNow(s, date(2, 10, 30), nil))
	// Other hours in the window ignore the minute
	assert.True(t, IsEligibleNow(s, date(2, 11, 0), nil))
}

func TestIsEligibleNow_SmartTimingWeekdays(t *testing.T) {
	s := timingSettings()
	s.EnableSmartTiming = true
	s.PreferredWeekdays = []time.Weekday{time.Tuesday, time.Thursday}

	monday := date(2, 12, 0)
	tuesday := date(3, 12, 0)

	assert.False(t, IsEligibleNow(s, monday, nil))
	assert.True(t, IsEligibleNow(s, tuesday, nil))
}

func TestIsEligibleNow_SmartTimingLateNight(t *testing.T) {
	s := timingSettings()
	s.EnableSmartTiming = true
	s.AvoidLateNight = true

	assert.False(t, IsEligibleNow(s, date(2, 6, 59), nil))
	assert.True(t, IsEligibleNow(s, date(2, 7, 0), nil))
	assert.True(t, IsEligibleNow(s, date(2, 21, 59), nil))
	assert.False(t, IsEligibleNow(s, date(2, 22, 0), nil))
}

func TestIsEligibleNow_SmartTimingHolidayChecker(t *testing.T) {
	s := timingSettings()
	s.EnableSmartTiming = true
	s.AvoidHolidays = true

	now := date(2, 12, 0)

	assert.True(t, IsEligibleNow(s, now, nil), "default checker flags no holidays")
	assert.False(t, IsEligibleNow(s, now, func(time.Time) bool { return true }))
}

func TestIsEligibleNow_Pure(t *testing.T) {
	s := timingSettings()
	now := date(2, 10, 45)

	first := IsEligibleNow(s, now, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IsEligibleNow(s, now, nil), "identical inputs must yield identical output")
	}
}
