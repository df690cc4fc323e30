package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/username/worktime/internal/schedule"
	"go.uber.org/zap"
)

const (
	// StorageKey is the single key holding the whole serialized collection
	StorageKey = "workTimeSchedule"

	// MaxWeeks is how many week records are retained
	MaxWeeks = 12
)

// Store loads and saves the week collection as one blob. Reads always load the
// entire collection and writes always replace it; a mutex serialises
// read-modify-write sequences within the process.
type Store struct {
	backend Backend
	logger  *zap.Logger
	mu      sync.Mutex
}

// New creates a Store over backend
func New(backend Backend, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

// GetAllSavedData returns every saved week. It never fails: unreadable or
// undecodable data is logged and yields an empty collection.
func (s *Store) GetAllSavedData(ctx context.Context) schedule.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// SaveAllData replaces the persisted collection
func (s *Store) SaveAllData(ctx context.Context, all schedule.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, all)
}

// Update loads the collection, applies fn and persists the result. Nothing is
// saved when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(all schedule.Collection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load(ctx)
	if err := fn(all); err != nil {
		return err
	}
	return s.save(ctx, all)
}

// CleanOldData drops the oldest weeks so that at most MaxWeeks remain and
// returns the keys of the removed weeks, oldest first
func (s *Store) CleanOldData(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.load(ctx)
	keys := all.SortedKeys()
	if len(keys) <= MaxWeeks {
		return nil, nil
	}

	removed := keys[:len(keys)-MaxWeeks]
	for _, key := range removed {
		delete(all, key)
	}

	if err := s.save(ctx, all); err != nil {
		return nil, err
	}

	s.logger.Info("Old weeks cleaned",
		zap.Int("removed", len(removed)),
		zap.Strings("week_keys", removed))

	return removed, nil
}

// DeleteWeekData removes one week. The collection is persisted even if the week was absent.
func (s *Store) DeleteWeekData(ctx context.Context, weekKey string) error {
	return s.Update(ctx, func(all schedule.Collection) error {
		delete(all, weekKey)
		return nil
	})
}

// ClearAllData removes the persisted blob entirely
func (s *Store) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear saved data: %w", err)
	}

	s.logger.Info("All saved data cleared")
	return nil
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) load(ctx context.Context) schedule.Collection {
	raw, ok, err := s.backend.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Error("Failed to load saved data", zap.Error(err))
		return schedule.Collection{}
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return schedule.Collection{}
	}

	all, err := decodeCollection(raw, s.logger)
	if err != nil {
		s.logger.Error("Failed to parse saved data", zap.Error(err))
		return schedule.Collection{}
	}
	return all
}

func (s *Store) save(ctx context.Context, all schedule.Collection) error {
	if all == nil {
		all = schedule.Collection{}
	}

	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to marshal saved data: %w", err)
	}

	if err := s.backend.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to save data: %w", err)
	}
	return nil
}
