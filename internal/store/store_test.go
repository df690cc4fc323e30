package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/username/worktime/internal/schedule"
)

func newMemoryStore(t *testing.T) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	return New(backend, zaptest.NewLogger(t)), backend
}

func weekAt(t *testing.T, key string) schedule.WeekRecord {
	t.Helper()
	start, err := time.ParseInLocation("2006-01-02", key, time.Local)
	require.NoError(t, err)
	return schedule.NewWeekRecord(start)
}

func TestStore_SaveAndLoad(t *testing.T) {
	s, backend := newMemoryStore(t)
	ctx := context.Background()

	week := weekAt(t, "2024-01-01")
	week.WeekDays[0].Items = append(week.WeekDays[0].Items, schedule.WorkItem{ID: "a", Title: "review", Hours: 2.5})

	require.NoError(t, s.SaveAllData(ctx, schedule.Collection{week.WeekKey: week}))

	raw, ok, err := backend.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"2024-01-01":{"weekKey":"2024-01-01","weekDays":[`)

	all := s.GetAllSavedData(ctx)
	require.Contains(t, all, "2024-01-01")
	assert.Equal(t, week, all["2024-01-01"])
}

func TestStore_GetAllSavedData_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKeys []string
	}{
		{
			name:     "legacy single week",
			raw:      `{"weekKey":"2024-01-01","weekDays":[{"name":"周一","date":"2024-01-01","items":[{"hours":3}]}]}`,
			wantKeys: []string{"2024-01-01"},
		},
		{
			name:     "current collection",
			raw:      `{"2024-01-01":{"weekKey":"2024-01-01","weekDays":[]},"2024-01-08":{"weekKey":"2024-01-08","weekDays":[]}}`,
			wantKeys: []string{"2024-01-01", "2024-01-08"},
		},
		{
			name:     "legacy marker with empty weekKey is treated as a collection",
			raw:      `{"weekKey":"","weekDays":[]}`,
			wantKeys: []string{},
		},
		{
			name:     "undecodable entry is skipped",
			raw:      `{"2024-01-01":{"weekKey":"2024-01-01","weekDays":[]},"2024-01-08":42}`,
			wantKeys: []string{"2024-01-01"},
		},
		{name: "corrupt JSON", raw: `{"2024-01-01":`, wantKeys: []string{}},
		{name: "null", raw: `null`, wantKeys: []string{}},
		{name: "number", raw: `42`, wantKeys: []string{}},
		{name: "array", raw: `[1,2]`, wantKeys: []string{}},
		{name: "empty blob", raw: ``, wantKeys: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, backend := newMemoryStore(t)
			ctx := context.Background()
			require.NoError(t, backend.Set(ctx, StorageKey, []byte(tt.raw)))

			all := s.GetAllSavedData(ctx)
			require.NotNil(t, all)
			assert.Equal(t, tt.wantKeys, all.SortedKeys())
		})
	}
}

func TestStore_LegacyWeekIsRewrittenInCurrentShape(t *testing.T) {
	s, backend := newMemoryStore(t)
	ctx := context.Background()

	legacy := `{"weekKey":"2024-01-01","weekDays":[{"name":"周一","date":"2024-01-01","items":[{"hours":3}]}]}`
	require.NoError(t, backend.Set(ctx, StorageKey, []byte(legacy)))

	all := s.GetAllSavedData(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, 3.0, all["2024-01-01"].WeekDays[0].Items[0].Hours)

	require.NoError(t, s.SaveAllData(ctx, all))
	raw, _, err := backend.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `{"2024-01-01":{"weekKey":"2024-01-01"`)
}

func TestStore_CleanOldData(t *testing.T) {
	s, _ := newMemoryStore(t)
	ctx := context.Background()

	all := schedule.Collection{}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	var keys []string
	for i := 0; i < 15; i++ {
		week := schedule.NewWeekRecord(start.AddDate(0, 0, 7*i))
		all[week.WeekKey] = week
		keys = append(keys, week.WeekKey)
	}
	require.NoError(t, s.SaveAllData(ctx, all))

	removed, err := s.CleanOldData(ctx)
	require.NoError(t, err)
	assert.Equal(t, keys[:3], removed)

	remaining := s.GetAllSavedData(ctx)
	assert.Equal(t, keys[3:], remaining.SortedKeys())
	assert.Len(t, remaining, MaxWeeks)

	removed, err = s.CleanOldData(ctx)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestStore_CleanOldData_UnderLimitDoesNotWrite(t *testing.T) {
	s, backend := newMemoryStore(t)
	ctx := context.Background()

	removed, err := s.CleanOldData(ctx)
	require.NoError(t, err)
	assert.Empty(t, removed)

	_, ok, err := backend.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DeleteWeekData(t *testing.T) {
	s, backend := newMemoryStore(t)
	ctx := context.Background()

	// deleting from an empty store still persists an empty collection
	require.NoError(t, s.DeleteWeekData(ctx, "2024-01-01"))
	raw, ok, err := backend.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "{}", string(raw))

	require.NoError(t, s.SaveAllData(ctx, schedule.Collection{
		"2024-01-01": weekAt(t, "2024-01-01"),
		"2024-01-08": weekAt(t, "2024-01-08"),
	}))
	require.NoError(t, s.DeleteWeekData(ctx, "2024-01-01"))
	assert.Equal(t, []string{"2024-01-08"}, s.GetAllSavedData(ctx).SortedKeys())
}

func TestStore_ClearAllData(t *testing.T) {
	s, backend := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAllData(ctx, schedule.Collection{"2024-01-01": weekAt(t, "2024-01-01")}))
	require.NoError(t, s.ClearAllData(ctx))

	_, ok, err := backend.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s.GetAllSavedData(ctx))
}

func TestStore_UpdateErrorDoesNotSave(t *testing.T) {
	s, _ := newMemoryStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveAllData(ctx, schedule.Collection{"2024-01-01": weekAt(t, "2024-01-01")}))

	boom := errors.New("boom")
	err := s.Update(ctx, func(all schedule.Collection) error {
		delete(all, "2024-01-01")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, s.GetAllSavedData(ctx), "2024-01-01")
}

func TestStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	s, _ := newMemoryStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("2024-01-%02d", i+1)
			err := s.Update(ctx, func(all schedule.Collection) error {
				all[key] = schedule.WeekRecord{WeekKey: key}
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.GetAllSavedData(ctx), 10)
}

type failingBackend struct {
	MemoryBackend
}

func (f *failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (f *failingBackend) Set(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func TestStore_BackendFailures(t *testing.T) {
	s := New(&failingBackend{}, zaptest.NewLogger(t))
	ctx := context.Background()

	assert.Empty(t, s.GetAllSavedData(ctx))
	assert.Error(t, s.SaveAllData(ctx, schedule.Collection{}))
	assert.Error(t, s.DeleteWeekData(ctx, "2024-01-01"))
}
