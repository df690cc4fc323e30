package calendar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ChineseDaysCalendar implements Calendar from chinese-days detail records.
// It backs dates before PrimaryMinYear.
//
// Line format: YYYY-MM-DD <holiday|workday> <detail name>
// Example:     2017-01-28 holiday Spring Festival,春节,7
type ChineseDaysCalendar struct {
	logger *zap.Logger
	mu     sync.RWMutex
	data   map[string]chineseDaysEntry // key: "YYYY-MM-DD"
}

type chineseDaysEntry struct {
	work   bool
	detail string
}

// NewChineseDaysCalendar creates a ChineseDaysCalendar preloaded with the embedded records
func NewChineseDaysCalendar(logger *zap.Logger) *ChineseDaysCalendar {
	fc := &ChineseDaysCalendar{
		logger: logger,
		data:   make(map[string]chineseDaysEntry),
	}

	f, err := dataFS.Open("data/chinese-days.txt")
	if err != nil {
		logger.Warn("No embedded chinese-days data", zap.Error(err))
		return fc
	}
	defer f.Close()

	if _, err := fc.Read(f); err != nil {
		logger.Warn("Failed to read embedded chinese-days data", zap.Error(err))
	}
	return fc
}

// LoadFile loads additional records from a local text file
func (fc *ChineseDaysCalendar) LoadFile(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	n, err := fc.Read(file)
	if err != nil {
		return err
	}

	fc.logger.Info("Calendar file loaded",
		zap.String("file", filePath),
		zap.Int("days", n))

	return nil
}

// Read parses records from r and returns how many were stored
func (fc *ChineseDaysCalendar) Read(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0

	fc.mu.Lock()
	defer fc.mu.Unlock()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 3 {
			fc.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}

		dateStr, typeStr, detail := parts[0], parts[1], strings.TrimSpace(parts[2])

		if _, err := time.Parse("2006-01-02", dateStr); err != nil {
			fc.logger.Warn("Failed to parse date", zap.String("date", dateStr), zap.Error(err))
			continue
		}

		var work bool
		switch typeStr {
		case "holiday":
			work = false
		case "workday":
			work = true
		default:
			fc.logger.Warn("Unknown day type", zap.String("type", typeStr))
			continue
		}

		fc.data[dateStr] = chineseDaysEntry{work: work, detail: detail}
		count++
	}

	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("error reading calendar records: %w", err)
	}

	return count, nil
}

// GetDayInfo returns detailed info for a specific day
func (fc *ChineseDaysCalendar) GetDayInfo(date string) (*DayInfo, error) {
	t, err := parseDay(date)
	if err != nil {
		return nil, err
	}

	fc.mu.RLock()
	entry, listed := fc.data[date]
	fc.mu.RUnlock()

	if !listed {
		// Unlisted days carry their English weekday name as detail, like chinese-days does
		info := weekdayInfo(date, t)
		info.Detail = t.Weekday().String()
		info.Name = festivalName(info.Detail)
		return info, nil
	}

	info := &DayInfo{Date: date, Detail: entry.detail, Name: festivalName(entry.detail)}
	switch {
	case !entry.work:
		info.Type = DayTypeHoliday
		info.IsOffDay = true
	case isSatOrSun(t):
		info.Type = DayTypeMakeup
	default:
		info.Type = DayTypeWorkday
	}
	return info, nil
}

// festivalName extracts a display name from a comma separated detail name.
// "Spring Festival,春节,7" -> "春节"; "Saturday" / "Sunday" -> ""; any other single
// component is returned verbatim.
func festivalName(detail string) string {
	if detail == "" {
		return ""
	}

	names := strings.Split(detail, ",")
	if len(names) > 1 {
		return names[1]
	}

	if names[0] == "Saturday" || names[0] == "Sunday" {
		return ""
	}
	return names[0]
}
