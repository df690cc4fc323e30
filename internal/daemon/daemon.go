package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/username/worktime/internal/calendar"
	"github.com/username/worktime/pkg/dateutil"
)

// Cleaner applies the week retention policy
type Cleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

// Preloader warms calendar data for whole years
type Preloader interface {
	Preload(years ...int) error
}

// Daemon runs daily maintenance: retention cleanup and calendar warm-up
type Daemon struct {
	cleaner     Cleaner
	preloader   Preloader
	dailyHour   int // Hour to run maintenance (0-23)
	dailyMinute int // Minute to run maintenance (0-59)
	tick        time.Duration
	logger      *zap.Logger
	lastRunDate string // date of the last successful run, prevents duplicates
	mu          sync.Mutex
	running     bool
}

// NewScheduledDaemon creates a daemon that runs once a day at dailyHour:dailyMinute local time
func NewScheduledDaemon(cleaner Cleaner, preloader Preloader, dailyHour, dailyMinute int, logger *zap.Logger) *Daemon {
	return &Daemon{
		cleaner:     cleaner,
		preloader:   preloader,
		dailyHour:   dailyHour,
		dailyMinute: dailyMinute,
		tick:        time.Minute,
		logger:      logger,
	}
}

// Run blocks until ctx is cancelled. If today's scheduled time has already passed,
// maintenance runs immediately.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("Daemon started",
		zap.Int("daily_hour", d.dailyHour),
		zap.Int("daily_minute", d.dailyMinute))

	now := dateutil.Now()
	scheduledToday := time.Date(now.Year(), now.Month(), now.Day(),
		d.dailyHour, d.dailyMinute, 0, 0, now.Location())
	if now.After(scheduledToday) {
		d.logger.Info("Scheduled time already passed today, running maintenance now",
			zap.Time("scheduled_time", scheduledToday))
		if err := d.RunOnce(ctx); err != nil {
			d.logger.Error("Initial maintenance failed", zap.Error(err))
		}
	}

	nextRun := d.nextRun(dateutil.Now())
	d.logger.Info("Next maintenance scheduled",
		zap.Time("next_run", nextRun),
		zap.Duration("wait_duration", time.Until(nextRun)))

	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Daemon stopped")
			return nil

		case <-ticker.C:
			now := dateutil.Now()
			if !d.shouldRunAt(now) {
				continue
			}

			if err := d.RunOnce(ctx); err != nil {
				d.logger.Error("Maintenance failed", zap.Error(err))
				continue
			}

			nextRun = d.nextRun(now)
			d.logger.Info("Next maintenance scheduled",
				zap.Time("next_run", nextRun),
				zap.Duration("wait_duration", time.Until(nextRun)))
		}
	}
}

// ErrMaintenanceRunning is returned by RunOnce while another run is in progress
var ErrMaintenanceRunning = errors.New("maintenance already in progress")

// RunOnce performs maintenance for today unless it already ran today.
// The lock only guards the bookkeeping; cleanup and preload run without it.
func (d *Daemon) RunOnce(ctx context.Context) error {
	today := dateutil.FormatDate(dateutil.Now())

	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrMaintenanceRunning
	}
	if d.lastRunDate == today {
		d.mu.Unlock()
		d.logger.Debug("Maintenance already ran today", zap.String("date", today))
		return nil
	}
	d.running = true
	d.mu.Unlock()

	removed, err := d.maintain(ctx)

	d.mu.Lock()
	d.running = false
	if err == nil {
		d.lastRunDate = today
	}
	d.mu.Unlock()

	if err != nil {
		return err
	}

	d.logger.Info("Maintenance completed",
		zap.String("date", today),
		zap.Int("weeks_removed", removed))

	return nil
}

func (d *Daemon) maintain(ctx context.Context) (int, error) {
	removed, err := d.cleaner.Cleanup(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clean old weeks: %w", err)
	}

	year := dateutil.Now().Year()
	if err := d.preloader.Preload(year); err != nil {
		d.logger.Warn("Failed to preload calendar", zap.Int("year", year), zap.Error(err))
	}
	// next year's schedule is usually published in autumn
	if err := d.preloader.Preload(year + 1); err != nil {
		level := zap.WarnLevel
		if errors.Is(err, calendar.ErrYearNotCovered) {
			level = zap.DebugLevel
		}
		d.logger.Check(level, "Next year calendar not available").Write(zap.Int("year", year+1), zap.Error(err))
	}

	return removed, nil
}

// nextRun calculates the next scheduled run after now
func (d *Daemon) nextRun(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(),
		d.dailyHour, d.dailyMinute, 0, 0, now.Location())

	if !now.Before(today) {
		return today.AddDate(0, 0, 1)
	}
	return today
}

// shouldRunAt checks if maintenance is due at now (within the minute)
func (d *Daemon) shouldRunAt(now time.Time) bool {
	return now.Hour() == d.dailyHour && now.Minute() == d.dailyMinute
}
