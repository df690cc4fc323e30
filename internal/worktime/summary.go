package worktime

import (
	"context"

	"github.com/username/worktime/internal/schedule"
	"github.com/username/worktime/pkg/dateutil"
)

// DaySummary is one day of a WeekSummary
type DaySummary struct {
	Name           string              `json:"name"`
	Date           string              `json:"date"`
	DayDate        string              `json:"dayDate"`
	IsToday        bool                `json:"isToday"`
	IsRestDay      bool                `json:"isRestDay"`
	IsMakeupDay    bool                `json:"isMakeupDay"`
	HolidayName    string              `json:"holidayName,omitempty"`
	Items          []schedule.WorkItem `json:"items"`
	TotalHours     string              `json:"totalHours"`
	RemainingHours string              `json:"remainingHours"`
}

// WeekSummary is a week with every derived value the views show
type WeekSummary struct {
	WeekKey        string       `json:"weekKey"`
	WeekNumber     int          `json:"weekNumber"`
	DateRange      string       `json:"dateRange"`
	IsCurrentWeek  bool         `json:"isCurrentWeek"`
	Saved          bool         `json:"saved"`
	TotalHours     string       `json:"totalHours"`
	TargetHours    int          `json:"targetHours"`
	RemainingHours string       `json:"remainingHours"`
	Days           []DaySummary `json:"days"`
}

// WeekSummary describes the week at weekKey. Weeks without a saved record are
// described with seven empty days.
func (s *Service) WeekSummary(ctx context.Context, weekKey string) (*WeekSummary, error) {
	weekStart, err := ParseWeekKey(weekKey)
	if err != nil {
		return nil, err
	}

	week, saved := s.week(ctx, weekKey)
	if !saved {
		week = schedule.NewWeekRecord(weekStart)
	}

	summary := &WeekSummary{
		WeekKey:       weekKey,
		WeekNumber:    dateutil.WeekNumber(weekStart),
		DateRange:     schedule.WeekRange(week.WeekDays),
		IsCurrentWeek: dateutil.IsCurrentWeek(weekStart),
		Saved:         saved,
		TotalHours:    WeekTotalHours(week.WeekDays),
		TargetHours:   WeekTargetHours(week.WeekDays, s.holidays.RestDay, s.holidays.MakeupDay),
		Days:          make([]DaySummary, 0, len(week.WeekDays)),
	}
	summary.RemainingHours = WeekRemainingHours(summary.TotalHours, summary.TargetHours)

	for _, day := range week.WeekDays {
		items := day.Items
		if items == nil {
			items = []schedule.WorkItem{}
		}

		d := DaySummary{
			Name:           day.Name,
			Date:           day.Date,
			DayDate:        dateutil.FormatDayDate(day.Date),
			IsToday:        dateutil.IsToday(day.Date),
			IsRestDay:      s.holidays.RestDay(day.Name, day.Date),
			IsMakeupDay:    s.holidays.MakeupDay(day.Name, day.Date),
			Items:          items,
			TotalHours:     TotalHours(items),
			RemainingHours: RemainingHours(items, day.Name, day.Date, s.holidays.RestDay, s.holidays.MakeupDay),
		}
		if d.IsRestDay || d.IsMakeupDay {
			d.HolidayName, _ = s.holidays.HolidayName(day.Date)
		}
		summary.Days = append(summary.Days, d)
	}

	return summary, nil
}

// Weeks summarises every saved week, newest first
func (s *Service) Weeks(ctx context.Context) []*WeekSummary {
	keys := s.WeekKeys(ctx)
	weeks := make([]*WeekSummary, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		summary, err := s.WeekSummary(ctx, keys[i])
		if err != nil {
			// keys that do not name a Monday cannot be summarised
			continue
		}
		weeks = append(weeks, summary)
	}
	return weeks
}
