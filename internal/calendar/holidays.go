package calendar

import (
	"go.uber.org/zap"
)

// Day labels that may be make-up workdays
const (
	saturdayName = "周六"
	sundayName   = "周日"
)

// Holidays answers the rest-day questions the work-time module asks.
// Lookup failures are logged and never surface to callers.
type Holidays struct {
	calendar Calendar
	logger   *zap.Logger
}

// NewHolidays creates a Holidays backed by cal
func NewHolidays(cal Calendar, logger *zap.Logger) *Holidays {
	return &Holidays{
		calendar: cal,
		logger:   logger,
	}
}

// NewDefaultHolidays wires the holiday-cn primary and chinese-days fallback behind a YearCalendar
func NewDefaultHolidays(primary *HolidayCNCalendar, fallback *ChineseDaysCalendar, logger *zap.Logger) *Holidays {
	return NewHolidays(NewYearCalendar(primary, fallback, PrimaryMinYear), logger)
}

// DayInfo classifies date. When the data source fails, a plain Saturday/Sunday rule is used;
// unparsable dates yield nil.
func (h *Holidays) DayInfo(date string) *DayInfo {
	info, err := h.calendar.GetDayInfo(date)
	if err == nil {
		return info
	}

	t, parseErr := parseDay(date)
	if parseErr != nil {
		h.logger.Debug("Cannot classify date", zap.String("date", date), zap.Error(err))
		return nil
	}

	h.logger.Warn("Calendar lookup failed, using weekday rule",
		zap.String("date", date),
		zap.Error(err))
	return weekdayInfo(date, t)
}

// IsWeekend reports whether date is a legal rest day (public holiday or ordinary weekend)
func (h *Holidays) IsWeekend(date string) bool {
	info := h.DayInfo(date)
	return info != nil && info.IsOffDay
}

// IsWorkdayOnWeekend reports whether a Saturday or Sunday must be worked.
// Day names other than 周六 and 周日 return false without a calendar lookup.
func (h *Holidays) IsWorkdayOnWeekend(dayName, date string) bool {
	if dayName != saturdayName && dayName != sundayName {
		return false
	}

	info := h.DayInfo(date)
	return info != nil && !info.IsOffDay
}

// HolidayName returns the festival name of date. Ordinary weekends have none.
func (h *Holidays) HolidayName(date string) (string, bool) {
	info := h.DayInfo(date)
	if info == nil || info.Name == "" {
		return "", false
	}
	return info.Name, true
}

// RestDay is IsWeekend in the (dayName, date) predicate shape
func (h *Holidays) RestDay(dayName, date string) bool {
	return h.IsWeekend(date)
}

// MakeupDay is IsWorkdayOnWeekend in the (dayName, date) predicate shape
func (h *Holidays) MakeupDay(dayName, date string) bool {
	return h.IsWorkdayOnWeekend(dayName, date)
}
