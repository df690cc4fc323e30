package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWeekend
	DayTypeHoliday
	DayTypeMakeup // Saturday or Sunday that must be worked because of a holiday shift
)

// String returns the lower-case label used in data files and API output
func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	case DayTypeMakeup:
		return "makeup"
	default:
		return "unknown"
	}
}

// PrimaryMinYear is the first year covered by the holiday-cn data source
const PrimaryMinYear = 2018

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrYearNotCovered = errors.New("year not covered by calendar data")
)

// DayInfo represents information about a specific day
type DayInfo struct {
	Date     string
	Type     DayType
	IsOffDay bool   // legal rest day: public holiday or ordinary weekend
	Name     string // festival display name, empty for ordinary days
	Detail   string // raw name as stored by the data source
}

// Calendar classifies a single ISO date
type Calendar interface {
	// GetDayInfo returns detailed info for a specific YYYY-MM-DD date
	GetDayInfo(date string) (*DayInfo, error)
}

// UsePrimary reports whether the primary source covers date.
// Anything whose first four characters are not a year >= minYear goes to the fallback.
func UsePrimary(date string, minYear int) bool {
	if len(date) < 4 {
		return false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return false
	}
	return year >= minYear
}

func parseDay(date string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, date, err)
	}
	return t, nil
}

func isSatOrSun(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// weekdayInfo classifies a date that no data source lists: Saturday and Sunday rest.
func weekdayInfo(date string, t time.Time) *DayInfo {
	if isSatOrSun(t) {
		return &DayInfo{Date: date, Type: DayTypeWeekend, IsOffDay: true}
	}
	return &DayInfo{Date: date, Type: DayTypeWorkday}
}
