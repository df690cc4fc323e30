package worktime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/username/worktime/internal/schedule"
)

func items(hours ...float64) []schedule.WorkItem {
	result := make([]schedule.WorkItem, 0, len(hours))
	for _, h := range hours {
		result = append(result, schedule.WorkItem{Hours: h})
	}
	return result
}

// weekendByName treats 周六 and 周日 as rest days
func weekendByName(dayName, _ string) bool {
	return dayName == schedule.Saturday || dayName == schedule.Sunday
}

func never(string, string) bool  { return false }
func always(string, string) bool { return true }

func TestTotalHours(t *testing.T) {
	tests := []struct {
		name  string
		items []schedule.WorkItem
		want  string
	}{
		{"nil", nil, "0"},
		{"empty", []schedule.WorkItem{}, "0"},
		{"single zero", items(0), "0.0"},
		{"sum", items(3, 2.5), "5.5"},
		{"whole", items(4, 4), "8.0"},
		{"half rounds up", items(0.25), "0.3"},
		{"three quarters", items(1.75), "1.8"},
		{"float noise", items(0.1, 0.2), "0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalHours(tt.items))
		})
	}
}

func TestRemainingHours(t *testing.T) {
	tests := []struct {
		name    string
		items   []schedule.WorkItem
		dayName string
		rest    DayPredicate
		makeup  DayPredicate
		want    string
	}{
		{"Sunday without make-up", nil, "周日", weekendByName, never, "0.0"},
		{"Monday with nothing logged", nil, "周一", weekendByName, never, "8.0"},
		{"Monday partially logged", items(3, 2.5), "周一", weekendByName, never, "2.5"},
		{"Monday overtime", items(10), "周一", weekendByName, never, "0.0"},
		{"make-up Saturday", items(2), "周六", weekendByName, always, "6.0"},
		{"holiday on a weekday", nil, "周三", always, never, "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemainingHours(tt.items, tt.dayName, "2024-01-01", tt.rest, tt.makeup))
		})
	}
}

func TestWeekTotalHours(t *testing.T) {
	assert.Equal(t, "0", WeekTotalHours(nil))
	assert.Equal(t, "0", WeekTotalHours([]schedule.DayRecord{}))
	assert.Equal(t, "0.0", WeekTotalHours(schedule.GenerateWeekDays(mustDate(t, "2024-01-01"))))

	days := []schedule.DayRecord{
		{Name: "周一", Items: items(3, 2.5)},
		{Name: "周二", Items: nil},
		{Name: "周三", Items: items(8)},
	}
	assert.Equal(t, "13.5", WeekTotalHours(days))

	// daily totals are rounded before they are summed
	rounded := []schedule.DayRecord{
		{Name: "周一", Items: items(0.25)},
		{Name: "周二", Items: items(0.25)},
	}
	assert.Equal(t, "0.6", WeekTotalHours(rounded))
}

func TestWeekTargetHours(t *testing.T) {
	days := schedule.GenerateWeekDays(mustDate(t, "2024-01-01"))
	assert.Equal(t, 40, WeekTargetHours(days, weekendByName, never))
	assert.Equal(t, 56, WeekTargetHours(days, weekendByName, always))
	assert.Equal(t, 0, WeekTargetHours(days, always, never))
	assert.Equal(t, 0, WeekTargetHours(nil, weekendByName, never))
}

func TestWeekRemainingHours(t *testing.T) {
	assert.Equal(t, "26.5", WeekRemainingHours("13.5", 40))
	assert.Equal(t, "0.0", WeekRemainingHours("45.0", 40))
	assert.Equal(t, "40.0", WeekRemainingHours("0", 40))
	assert.Equal(t, "40.0", WeekRemainingHours("garbage", 40))
}
