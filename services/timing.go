package services

import (
	"time"

	"review-service-server/models"
)

// HolidayChecker reports whether a date should be treated as a holiday.
// There is no built-in calendar; DefaultHolidayChecker never flags a day, so
// the avoid-holidays setting stays inert until a real calendar is plugged in.
type HolidayChecker func(t time.Time) bool

// DefaultHolidayChecker treats no day as a holiday
func DefaultHolidayChecker(time.Time) bool {
	return false
}

// IsEligibleNow decides whether now is an acceptable moment to send a stage
// for the tenant. It is pure: now is always an explicit argument and no state
// is consulted, so identical inputs always produce identical answers.
func IsEligibleNow(settings *models.ReviewFollowUpSettings, now time.Time, holidays HolidayChecker) bool {
	if holidays == nil {
		holidays = DefaultHolidayChecker
	}

	weekday := now.Weekday()
	if !settings.SendWeekends && (weekday == time.Saturday || weekday == time.Sunday) {
		return false
	}

	if settings.EnableSmartTiming {
		if len(settings.PreferredWeekdays) > 0 {
			ok := false
			for _, day := range settings.PreferredWeekdays {
				if day == weekday {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		if settings.AvoidLateNight {
			hour := now.Hour()
			if hour < 7 || hour > 21 {
				return false
			}
		}
		if settings.AvoidHolidays && holidays(now) {
			return false
		}
		return true
	}

	// Simple mode: stay within a two-hour window around the preferred time,
	// and inside the preferred hour don't fire before the preferred minute.
	preferredHour, preferredMinute, err := ParsePreferredTime(settings.PreferredSendTime)
	if err != nil {
		// An unparseable stored value never blocks the lifecycle; validation
		// keeps new ones out.
		return true
	}

	hourDiff := now.Hour() - preferredHour
	if hourDiff < 0 {
		hourDiff = -hourDiff
	}
	if hourDiff > 2 {
		return false
	}
	if now.Hour() == preferredHour && now.Minute() < preferredMinute {
		return false
	}
	return true
}
