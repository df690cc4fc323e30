package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/worktime/pkg/dateutil"
)

func TestGenerateWeekDays(t *testing.T) {
	starts := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
		time.Date(2024, 2, 26, 0, 0, 0, 0, time.Local), // crosses leap day
		time.Date(2024, 12, 30, 0, 0, 0, 0, time.Local),
	}

	for _, start := range starts {
		t.Run(dateutil.FormatDate(start), func(t *testing.T) {
			days := GenerateWeekDays(start)
			require.Len(t, days, DaysPerWeek)

			for i, day := range days {
				assert.Equal(t, WeekdayNames[i], day.Name)
				assert.Equal(t, dateutil.FormatDate(start.AddDate(0, 0, i)), day.Date)
				assert.NotNil(t, day.Items)
				assert.Empty(t, day.Items)
			}
		})
	}

	days := GenerateWeekDays(time.Date(2024, 2, 26, 0, 0, 0, 0, time.Local))
	assert.Equal(t, "2024-02-29", days[3].Date)
	assert.Equal(t, "2024-03-03", days[6].Date)
}

func TestWeekRange(t *testing.T) {
	assert.Equal(t, "", WeekRange(nil))
	assert.Equal(t, "", WeekRange([]DayRecord{}))

	start := time.Date(2024, 12, 30, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "2024-12-30 ～ 2025-01-05", WeekRange(GenerateWeekDays(start)))
}

func TestCollectionSortedKeys(t *testing.T) {
	c := Collection{
		"2024-03-04": {},
		"2023-12-25": {},
		"2024-01-01": {},
	}
	assert.Equal(t, []string{"2023-12-25", "2024-01-01", "2024-03-04"}, c.SortedKeys())
}

func TestWeekRecordDay(t *testing.T) {
	week := NewWeekRecord(time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local))
	assert.Equal(t, "2024-01-01", week.WeekKey)

	day, ok := week.Day("2024-01-03")
	require.True(t, ok)
	assert.Equal(t, "周三", day.Name)

	day.Items = append(day.Items, WorkItem{Hours: 2})
	assert.Len(t, week.WeekDays[2].Items, 1)

	_, ok = week.Day("2024-01-08")
	assert.False(t, ok)
}
