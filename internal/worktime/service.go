package worktime

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/username/worktime/internal/schedule"
	"github.com/username/worktime/pkg/dateutil"
)

var (
	ErrInvalidHours   = errors.New("hours must be a non-negative number")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidWeekKey = errors.New("week key must be the ISO date of a Monday")
	ErrDayNotInWeek   = errors.New("day not found in week")
	ErrItemNotFound   = errors.New("work item not found")
)

// Repository is the persisted week collection
type Repository interface {
	GetAllSavedData(ctx context.Context) schedule.Collection
	Update(ctx context.Context, fn func(all schedule.Collection) error) error
	CleanOldData(ctx context.Context) ([]string, error)
	DeleteWeekData(ctx context.Context, weekKey string) error
	ClearAllData(ctx context.Context) error
}

// HolidayLookup classifies days for target hours and labels
type HolidayLookup interface {
	RestDay(dayName, date string) bool
	MakeupDay(dayName, date string) bool
	HolidayName(date string) (string, bool)
}

// Service reads and mutates week records
type Service struct {
	repo     Repository
	holidays HolidayLookup
	logger   *zap.Logger
}

// NewService creates a new work-time service
func NewService(repo Repository, holidays HolidayLookup, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		holidays: holidays,
		logger:   logger,
	}
}

// ItemUpdate carries the fields to change on a work item; nil fields are left as is
type ItemUpdate struct {
	Title *string
	Link  *string
	Hours *float64
}

// WeekKeyFor returns the key of the week containing date
func WeekKeyFor(date string) (string, error) {
	t, err := dateutil.ParseDate(date)
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrInvalidDate, date)
	}
	return dateutil.FormatDate(dateutil.StartOfWeek(t)), nil
}

// ParseWeekKey validates weekKey and returns the Monday it names
func ParseWeekKey(weekKey string) (time.Time, error) {
	t, err := time.ParseInLocation(dateutil.DateLayout, weekKey, time.Local)
	if err != nil || t.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeekKey, weekKey)
	}
	return t, nil
}

func (s *Service) week(ctx context.Context, weekKey string) (schedule.WeekRecord, bool) {
	week, ok := s.repo.GetAllSavedData(ctx)[weekKey]
	if !ok || week.WeekDays == nil {
		return schedule.WeekRecord{}, false
	}
	return week, true
}

// WeekDateRange returns "<first date> ～ <last date>" of a saved week, or ""
func (s *Service) WeekDateRange(ctx context.Context, weekKey string) string {
	week, ok := s.week(ctx, weekKey)
	if !ok {
		return ""
	}
	return schedule.WeekRange(week.WeekDays)
}

// WeekTotalHours sums every item of a saved week. A missing week yields "0".
func (s *Service) WeekTotalHours(ctx context.Context, weekKey string) string {
	week, ok := s.week(ctx, weekKey)
	if !ok {
		return "0"
	}

	total := 0.0
	for _, day := range week.WeekDays {
		total += sumItems(day.Items)
	}
	return formatHours(total)
}

// WeekTargetHours returns the expected hours of a saved week
func (s *Service) WeekTargetHours(ctx context.Context, weekKey string) int {
	week, ok := s.week(ctx, weekKey)
	if !ok {
		return 0
	}
	return WeekTargetHours(week.WeekDays, s.holidays.RestDay, s.holidays.MakeupDay)
}

// WeekRemainingHours returns the hours still to log in a saved week
func (s *Service) WeekRemainingHours(ctx context.Context, weekKey string) string {
	return WeekRemainingHours(s.WeekTotalHours(ctx, weekKey), s.WeekTargetHours(ctx, weekKey))
}

// WeekDays returns the days of a saved week, or nil
func (s *Service) WeekDays(ctx context.Context, weekKey string) []schedule.DayRecord {
	week, ok := s.week(ctx, weekKey)
	if !ok {
		return nil
	}
	return week.WeekDays
}

// HasWorkOnDay reports whether the day at date in a saved week has any items
func (s *Service) HasWorkOnDay(ctx context.Context, weekKey, date string) bool {
	week, ok := s.week(ctx, weekKey)
	if !ok {
		return false
	}
	day, ok := week.Day(date)
	return ok && len(day.Items) > 0
}

// AddItem appends item to the day at date, creating the week record if needed.
// Retention runs after every successful add.
func (s *Service) AddItem(ctx context.Context, date string, item schedule.WorkItem) (schedule.WorkItem, error) {
	if err := validateHours(item.Hours); err != nil {
		return schedule.WorkItem{}, err
	}

	t, err := dateutil.ParseDate(date)
	if err != nil {
		return schedule.WorkItem{}, fmt.Errorf("%w %q", ErrInvalidDate, date)
	}
	weekStart := dateutil.StartOfWeek(t)
	weekKey := dateutil.FormatDate(weekStart)
	date = dateutil.FormatDate(t)

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Title = strings.TrimSpace(item.Title)
	item.Link = strings.TrimSpace(item.Link)
	if item.Title == "" && item.Link != "" {
		if title, ok := ParseYunxiaoLink(item.Link); ok {
			item.Title = title
		}
	}

	err = s.repo.Update(ctx, func(all schedule.Collection) error {
		week, ok := all[weekKey]
		if !ok || len(week.WeekDays) == 0 {
			week = schedule.NewWeekRecord(weekStart)
		}

		day, ok := week.Day(date)
		if !ok {
			return fmt.Errorf("%w: %s in %s", ErrDayNotInWeek, date, weekKey)
		}
		day.Items = append(day.Items, item)
		all[weekKey] = week
		return nil
	})
	if err != nil {
		return schedule.WorkItem{}, fmt.Errorf("failed to add work item: %w", err)
	}

	s.logger.Info("Work item added",
		zap.String("week_key", weekKey),
		zap.String("date", date),
		zap.String("id", item.ID),
		zap.Float64("hours", item.Hours))

	removed, err := s.repo.CleanOldData(ctx)
	if err != nil {
		s.logger.Warn("Retention cleanup failed", zap.Error(err))
	}
	if slices.Contains(removed, weekKey) {
		// the item was saved, but its week is older than every retained week
		s.logger.Warn("Added work item evicted by retention",
			zap.String("week_key", weekKey),
			zap.String("id", item.ID))
	}

	return item, nil
}

// UpdateItem changes the item with the given id in a saved week
func (s *Service) UpdateItem(ctx context.Context, weekKey, id string, update ItemUpdate) (schedule.WorkItem, error) {
	if _, err := ParseWeekKey(weekKey); err != nil {
		return schedule.WorkItem{}, err
	}
	if update.Hours != nil {
		if err := validateHours(*update.Hours); err != nil {
			return schedule.WorkItem{}, err
		}
	}

	var updated schedule.WorkItem
	err := s.repo.Update(ctx, func(all schedule.Collection) error {
		item, err := findItem(all, weekKey, id)
		if err != nil {
			return err
		}

		if update.Title != nil {
			item.Title = strings.TrimSpace(*update.Title)
		}
		if update.Link != nil {
			item.Link = strings.TrimSpace(*update.Link)
		}
		if update.Hours != nil {
			item.Hours = *update.Hours
		}
		updated = *item
		return nil
	})
	if err != nil {
		return schedule.WorkItem{}, fmt.Errorf("failed to update work item: %w", err)
	}

	s.logger.Info("Work item updated",
		zap.String("week_key", weekKey),
		zap.String("id", id))

	return updated, nil
}

// RemoveItem deletes the item with the given id from a saved week
func (s *Service) RemoveItem(ctx context.Context, weekKey, id string) error {
	if _, err := ParseWeekKey(weekKey); err != nil {
		return err
	}

	err := s.repo.Update(ctx, func(all schedule.Collection) error {
		week := all[weekKey]
		for i := range week.WeekDays {
			items := week.WeekDays[i].Items
			for j := range items {
				if items[j].ID == id {
					week.WeekDays[i].Items = append(items[:j:j], items[j+1:]...)
					all[weekKey] = week
					return nil
				}
			}
		}
		return fmt.Errorf("%w: %s in %s", ErrItemNotFound, id, weekKey)
	})
	if err != nil {
		return fmt.Errorf("failed to remove work item: %w", err)
	}

	s.logger.Info("Work item removed",
		zap.String("week_key", weekKey),
		zap.String("id", id))

	return nil
}

// DeleteWeek removes a week record. Deleting an unsaved week is not an error.
func (s *Service) DeleteWeek(ctx context.Context, weekKey string) error {
	if _, err := ParseWeekKey(weekKey); err != nil {
		return err
	}
	if err := s.repo.DeleteWeekData(ctx, weekKey); err != nil {
		return fmt.Errorf("failed to delete week: %w", err)
	}

	s.logger.Info("Week deleted", zap.String("week_key", weekKey))
	return nil
}

// ClearAll removes every saved week
func (s *Service) ClearAll(ctx context.Context) error {
	return s.repo.ClearAllData(ctx)
}

// Cleanup applies the retention policy and returns the number of weeks removed
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	removed, err := s.repo.CleanOldData(ctx)
	return len(removed), err
}

// WeekKeys returns the keys of every saved week, oldest first
func (s *Service) WeekKeys(ctx context.Context) []string {
	return s.repo.GetAllSavedData(ctx).SortedKeys()
}

func findItem(all schedule.Collection, weekKey, id string) (*schedule.WorkItem, error) {
	week := all[weekKey]
	for i := range week.WeekDays {
		items := week.WeekDays[i].Items
		for j := range items {
			if items[j].ID == id {
				return &items[j], nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrItemNotFound, id, weekKey)
}

func validateHours(hours float64) error {
	if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return fmt.Errorf("%w, got %v", ErrInvalidHours, hours)
	}
	return nil
}
