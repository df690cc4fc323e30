package worktime

import (
	"math"
	"strconv"

	"github.com/username/worktime/internal/schedule"
)

// TargetHoursPerDay is the expected work on every day that is not a rest day
const TargetHoursPerDay = 8

// DayPredicate classifies a day by its weekday label and ISO date
type DayPredicate func(dayName, date string) bool

// TotalHours sums the hours of items with one fraction digit.
// An empty sequence yields "0" without a fraction digit.
func TotalHours(items []schedule.WorkItem) string {
	if len(items) == 0 {
		return "0"
	}
	return formatHours(sumItems(items))
}

// RemainingHours returns max(0, target - total) for one day, where the target is 0 on rest
// days that are not make-up workdays and TargetHoursPerDay otherwise
func RemainingHours(items []schedule.WorkItem, dayName, date string, isWeekend, isWorkdayOnWeekend DayPredicate) string {
	target := dayTarget(dayName, date, isWeekend, isWorkdayOnWeekend)
	return formatHours(math.Max(0, float64(target)-parseHours(TotalHours(items))))
}

// WeekTotalHours sums the rounded daily totals of days
func WeekTotalHours(days []schedule.DayRecord) string {
	if len(days) == 0 {
		return "0"
	}

	total := 0.0
	for _, day := range days {
		total += parseHours(TotalHours(day.Items))
	}
	return formatHours(total)
}

// WeekTargetHours sums the daily targets of days
func WeekTargetHours(days []schedule.DayRecord, isWeekend, isWorkdayOnWeekend DayPredicate) int {
	target := 0
	for _, day := range days {
		target += dayTarget(day.Name, day.Date, isWeekend, isWorkdayOnWeekend)
	}
	return target
}

// WeekRemainingHours returns max(0, weekTarget - weekTotal). An unparsable total counts as zero.
func WeekRemainingHours(weekTotal string, weekTarget int) string {
	return formatHours(math.Max(0, float64(weekTarget)-parseHours(weekTotal)))
}

func dayTarget(dayName, date string, isWeekend, isWorkdayOnWeekend DayPredicate) int {
	if isWeekend(dayName, date) && !isWorkdayOnWeekend(dayName, date) {
		return 0
	}
	return TargetHoursPerDay
}

func sumItems(items []schedule.WorkItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Hours
	}
	return total
}

// formatHours renders one fraction digit. Exact halves (x.25, x.75) round up, not to even.
func formatHours(hours float64) string {
	if q := hours * 4; q == math.Trunc(q) && math.Mod(q, 2) != 0 {
		hours = (math.Floor(hours*10) + 1) / 10
	}
	return strconv.FormatFloat(hours, 'f', 1, 64)
}

func parseHours(s string) float64 {
	hours, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(hours) {
		return 0
	}
	return hours
}
