package schedule

import (
	"sort"
	"time"

	"github.com/username/worktime/pkg/dateutil"
)

// DaysPerWeek is the number of DayRecords in every WeekRecord
const DaysPerWeek = 7

// WeekdayNames are the fixed day labels in Monday-first order
var WeekdayNames = [DaysPerWeek]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

const (
	Saturday = "周六"
	Sunday   = "周日"
)

// WorkItem represents a single logged task on a day
type WorkItem struct {
	ID    string  `json:"id,omitempty"`
	Title string  `json:"title,omitempty"`
	Link  string  `json:"link,omitempty"`
	Hours float64 `json:"hours"`
}

// DayRecord represents one day of a week with its items in display order
type DayRecord struct {
	Name  string     `json:"name"`
	Date  string     `json:"date"`
	Items []WorkItem `json:"items"`
}

// WeekRecord represents a Monday-to-Sunday week identified by the Monday's ISO date
type WeekRecord struct {
	WeekKey  string      `json:"weekKey"`
	WeekDays []DayRecord `json:"weekDays"`
}

// Collection maps week keys to their records
type Collection map[string]WeekRecord

// SortedKeys returns the week keys in ascending order. ISO dates sort chronologically.
func (c Collection) SortedKeys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// GenerateWeekDays builds the seven empty days starting at weekStart
func GenerateWeekDays(weekStart time.Time) []DayRecord {
	days := make([]DayRecord, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		days = append(days, DayRecord{
			Name:  WeekdayNames[i],
			Date:  dateutil.FormatDate(weekStart.AddDate(0, 0, i)),
			Items: []WorkItem{},
		})
	}
	return days
}

// NewWeekRecord creates an empty record for the week starting at weekStart
func NewWeekRecord(weekStart time.Time) WeekRecord {
	return WeekRecord{
		WeekKey:  dateutil.FormatDate(weekStart),
		WeekDays: GenerateWeekDays(weekStart),
	}
}

// WeekRange returns "<first date> ～ <last date>", or "" for no days
func WeekRange(days []DayRecord) string {
	if len(days) == 0 {
		return ""
	}
	return days[0].Date + " ～ " + days[len(days)-1].Date
}

// Day returns the day with the given date
func (w *WeekRecord) Day(date string) (*DayRecord, bool) {
	for i := range w.WeekDays {
		if w.WeekDays[i].Date == date {
			return &w.WeekDays[i], true
		}
	}
	return nil, false
}
