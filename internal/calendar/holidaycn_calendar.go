package calendar

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 24 * time.Hour
)

//go:embed data
var dataFS embed.FS

// HolidayCNCalendar implements Calendar using holiday-cn year documents.
// Each document lists public holidays (isOffDay=true) and make-up workdays
// (isOffDay=false) announced by the State Council.
type HolidayCNCalendar struct {
	yearURL    string // "{year}" is replaced with the requested year
	cacheDir   string // downloaded years are kept here as <year>.json; empty keeps them in memory only
	cacheTTL   time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	cache      map[int]*cachedYear
	cacheMu    sync.RWMutex
}

type cachedYear struct {
	days      map[string]holidayCNDay
	fetchedAt time.Time
	embedded  bool // embedded years never expire
}

// holidayCNYear represents a holiday-cn JSON document
type holidayCNYear struct {
	Year   int            `json:"year"`
	Papers []string       `json:"papers"`
	Days   []holidayCNDay `json:"days"`
}

type holidayCNDay struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	IsOffDay bool   `json:"isOffDay"`
}

// NewHolidayCNCalendar creates a new HolidayCNCalendar. Years shipped with the binary
// and years previously downloaded into cacheDir are loaded immediately; other years are
// downloaded from yearURL on first use. An empty yearURL disables downloading.
func NewHolidayCNCalendar(yearURL, cacheDir string, cacheTTL time.Duration, logger *zap.Logger) *HolidayCNCalendar {
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}

	c := &HolidayCNCalendar{
		yearURL:  yearURL,
		cacheDir: cacheDir,
		cacheTTL: cacheTTL,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger: logger,
		cache:  make(map[int]*cachedYear),
	}
	c.loadEmbedded()
	c.loadCacheDir()

	return c
}

// GetDayInfo returns detailed info for a specific day
func (c *HolidayCNCalendar) GetDayInfo(date string) (*DayInfo, error) {
	t, err := parseDay(date)
	if err != nil {
		return nil, err
	}

	days, err := c.yearDays(t.Year())
	if err != nil {
		return nil, err
	}

	day, listed := days[date]
	if !listed {
		return weekdayInfo(date, t), nil
	}

	name := strings.TrimSpace(day.Name)
	if day.IsOffDay {
		return &DayInfo{Date: date, Type: DayTypeHoliday, IsOffDay: true, Name: name, Detail: day.Name}, nil
	}

	dayType := DayTypeWorkday
	if isSatOrSun(t) {
		dayType = DayTypeMakeup
	}
	return &DayInfo{Date: date, Type: dayType, Name: name, Detail: day.Name}, nil
}

// Preload makes sure the given years are cached, downloading them when needed
func (c *HolidayCNCalendar) Preload(years ...int) error {
	for _, year := range years {
		if _, err := c.yearDays(year); err != nil {
			return fmt.Errorf("failed to preload year %d: %w", year, err)
		}
	}
	return nil
}

// LoadYear adds a holiday-cn document to the cache, replacing any cached copy
func (c *HolidayCNCalendar) LoadYear(r io.Reader) (int, error) {
	var doc holidayCNYear
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to parse holiday-cn JSON: %w", err)
	}

	c.store(doc, false, time.Now())
	return doc.Year, nil
}

// yearDays returns the listed days for year from cache, downloading on a miss.
// An expired copy is still served when the download fails.
func (c *HolidayCNCalendar) yearDays(year int) (map[string]holidayCNDay, error) {
	c.cacheMu.RLock()
	cached, ok := c.cache[year]
	c.cacheMu.RUnlock()

	if ok && (cached.embedded || time.Since(cached.fetchedAt) < c.cacheTTL) {
		return cached.days, nil
	}

	if c.yearURL == "" {
		if ok {
			return cached.days, nil
		}
		return nil, fmt.Errorf("%w: %d", ErrYearNotCovered, year)
	}

	doc, err := c.downloadYear(year)
	if err != nil {
		if !ok {
			return nil, err
		}
		c.logger.Warn("Failed to refresh holiday data, using cached copy",
			zap.Int("year", year),
			zap.Time("fetched_at", cached.fetchedAt),
			zap.Error(err))
		c.touch(year)
		return cached.days, nil
	}

	if err := c.saveYear(doc); err != nil {
		c.logger.Warn("Failed to write holiday data cache",
			zap.Int("year", year),
			zap.Error(err))
	}

	return c.store(*doc, false, time.Now()), nil
}

// downloadYear downloads an entire year document
func (c *HolidayCNCalendar) downloadYear(year int) (*holidayCNYear, error) {
	url := strings.ReplaceAll(c.yearURL, "{year}", strconv.Itoa(year))

	c.logger.Info("Downloading holiday calendar data",
		zap.String("url", url),
		zap.Int("year", year))

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holiday data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %d", ErrYearNotCovered, year)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday data source returned status %d", resp.StatusCode)
	}

	var doc holidayCNYear
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse holiday-cn JSON: %w", err)
	}
	if doc.Year != year {
		return nil, fmt.Errorf("holiday data source returned year %d, want %d", doc.Year, year)
	}

	c.logger.Info("Holiday calendar data downloaded",
		zap.Int("year", year),
		zap.Int("days", len(doc.Days)))

	return &doc, nil
}

func (c *HolidayCNCalendar) store(doc holidayCNYear, embedded bool, fetchedAt time.Time) map[string]holidayCNDay {
	days := make(map[string]holidayCNDay, len(doc.Days))
	for _, day := range doc.Days {
		days[day.Date] = day
	}

	c.cacheMu.Lock()
	c.cache[doc.Year] = &cachedYear{
		days:      days,
		fetchedAt: fetchedAt,
		embedded:  embedded,
	}
	c.cacheMu.Unlock()

	return days
}

// touch restarts the TTL of a cached year so a failing source is not retried on every lookup
func (c *HolidayCNCalendar) touch(year int) {
	c.cacheMu.Lock()
	if cached, ok := c.cache[year]; ok {
		c.cache[year] = &cachedYear{days: cached.days, fetchedAt: time.Now(), embedded: cached.embedded}
	}
	c.cacheMu.Unlock()
}

// saveYear writes a downloaded document to the cache directory
func (c *HolidayCNCalendar) saveYear(doc *holidayCNYear) error {
	if c.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create calendar cache directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal holiday data: %w", err)
	}

	target := filepath.Join(c.cacheDir, strconv.Itoa(doc.Year)+".json")
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write holiday data: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace holiday data: %w", err)
	}
	return nil
}

// loadCacheDir loads previously downloaded years. Their age is the file's modification time.
func (c *HolidayCNCalendar) loadCacheDir() {
	if c.cacheDir == "" {
		return
	}

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read calendar cache directory",
				zap.String("dir", c.cacheDir),
				zap.Error(err))
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(c.cacheDir, entry.Name())
		doc, modTime, err := readYearFile(path)
		if err != nil {
			c.logger.Warn("Skipping unreadable cached holiday data",
				zap.String("file", path),
				zap.Error(err))
			continue
		}

		c.cacheMu.RLock()
		existing, ok := c.cache[doc.Year]
		c.cacheMu.RUnlock()
		if ok && existing.embedded {
			continue
		}
		c.store(*doc, false, modTime)
	}
}

func readYearFile(path string) (*holidayCNYear, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, err
	}

	var doc holidayCNYear
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse holiday-cn JSON: %w", err)
	}
	if doc.Year == 0 {
		return nil, time.Time{}, fmt.Errorf("holiday-cn JSON has no year")
	}
	return &doc, info.ModTime(), nil
}

func (c *HolidayCNCalendar) loadEmbedded() {
	entries, err := dataFS.ReadDir("data/holiday-cn")
	if err != nil {
		c.logger.Warn("No embedded holiday data", zap.Error(err))
		return
	}

	for _, entry := range entries {
		raw, err := dataFS.ReadFile("data/holiday-cn/" + entry.Name())
		if err != nil {
			c.logger.Warn("Failed to read embedded holiday data",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}

		var doc holidayCNYear
		if err := json.Unmarshal(raw, &doc); err != nil {
			c.logger.Warn("Failed to parse embedded holiday data",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		c.store(doc, true, time.Time{})
	}
}

// Years returns the cached years
func (c *HolidayCNCalendar) Years() []int {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	years := make([]int, 0, len(c.cache))
	for year := range c.cache {
		years = append(years, year)
	}
	return years
}

// ClearCache drops downloaded years from memory so the next lookup downloads them again.
// Embedded years stay available and files in the cache directory are overwritten on download.
func (c *HolidayCNCalendar) ClearCache() {
	c.cacheMu.Lock()
	for year, cached := range c.cache {
		if !cached.embedded {
			delete(c.cache, year)
		}
	}
	c.cacheMu.Unlock()

	c.logger.Info("Calendar cache cleared")
}
