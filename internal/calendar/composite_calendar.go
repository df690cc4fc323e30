package calendar

// YearCalendar implements Calendar by dispatching on the date's year:
// primary for years >= minYear, fallback for everything else.
type YearCalendar struct {
	primary  Calendar
	fallback Calendar
	minYear  int
}

// NewYearCalendar creates a new YearCalendar. A non-positive minYear means PrimaryMinYear.
func NewYearCalendar(primary, fallback Calendar, minYear int) *YearCalendar {
	if minYear <= 0 {
		minYear = PrimaryMinYear
	}

	return &YearCalendar{
		primary:  primary,
		fallback: fallback,
		minYear:  minYear,
	}
}

// GetDayInfo returns detailed info for a specific day from the source covering its year
func (yc *YearCalendar) GetDayInfo(date string) (*DayInfo, error) {
	if UsePrimary(date, yc.minYear) {
		return yc.primary.GetDayInfo(date)
	}
	return yc.fallback.GetDayInfo(date)
}
