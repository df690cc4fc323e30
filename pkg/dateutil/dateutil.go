package dateutil

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the canonical YYYY-MM-DD representation used for week keys and day dates
const DateLayout = "2006-01-02"

// Now is the clock used by every "current" helper. Tests replace it.
var Now = time.Now

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfWeek returns the Monday of the week for the given date.
// Sunday belongs to the week that started six days earlier.
func StartOfWeek(date time.Time) time.Time {
	weekday := int(date.Weekday()) // 0 = Sunday
	daysFromMonday := weekday - 1
	if weekday == 0 {
		daysFromMonday = 6
	}
	return StartOfDay(date.AddDate(0, 0, -daysFromMonday))
}

// CurrentWeekStart returns the Monday of the current calendar week
func CurrentWeekStart() time.Time {
	return StartOfWeek(Now())
}

// IsCurrentWeek reports whether weekStart is the Monday of the current week.
// Comparison is done on the formatted date so time of day and zone offsets do not matter.
func IsCurrentWeek(weekStart time.Time) bool {
	if weekStart.IsZero() {
		return false
	}
	return FormatDate(weekStart) == FormatDate(CurrentWeekStart())
}

// FormatDate formats date as zero-padded YYYY-MM-DD, or "" for the zero time
func FormatDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", date.Year(), int(date.Month()), date.Day())
}

// FormatDayDate formats an ISO date string as "M/D" without zero padding
func FormatDayDate(dateStr string) string {
	date, err := ParseDate(dateStr)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", int(date.Month()), date.Day())
}

// WeekNumber returns ceil((daysSinceJan1 + weekdayOfJan1 + 1) / 7) where weekdayOfJan1
// counts from Sunday = 0. This is not ISO-8601 numbering.
func WeekNumber(weekStart time.Time) int {
	if weekStart.IsZero() {
		return 0
	}
	yearStart := time.Date(weekStart.Year(), time.January, 1, 0, 0, 0, 0, weekStart.Location())
	days := weekStart.YearDay() - 1
	return int(math.Ceil(float64(days+int(yearStart.Weekday())+1) / 7))
}

// IsToday reports whether dateStr equals today's formatted date
func IsToday(dateStr string) bool {
	return dateStr == FormatDate(Now())
}

// ParseDate parses date string in various formats, in the local time zone
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		DateLayout,
		"2006/01/02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, dateStr, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date: %q", dateStr)
}

// Today returns today's date (start of day)
func Today() time.Time {
	return StartOfDay(Now())
}
