package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/frelancia/frelwatch/internal/config"
)

// InQuietHours reports whether now falls inside the configured quiet window.
// The window may wrap past midnight (e.g. 23:00-07:00). Qualifying jobs are
// still recorded during quiet hours, only the announcement is suppressed.
func InQuietHours(now time.Time, settings config.Settings) bool {
	if !settings.QuietHoursEnabled {
		return false
	}

	start, okStart := minuteOfDay(settings.QuietHoursStart)
	end, okEnd := minuteOfDay(settings.QuietHoursEnd)
	if !okStart || !okEnd || start == end {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	if start < end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}

func minuteOfDay(value string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
