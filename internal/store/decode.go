package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/username/worktime/internal/schedule"
	"go.uber.org/zap"
)

// Persisted data comes in two shapes:
//
//	legacy:  {"weekKey": "2024-01-01", "weekDays": [...]}
//	current: {"2024-01-01": {"weekKey": "2024-01-01", "weekDays": [...]}, ...}
//
// decodeCollection sniffs the shape and always returns the current one.
func decodeCollection(raw []byte, logger *zap.Logger) (schedule.Collection, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		if json.Valid(raw) {
			// valid JSON that is not an object holds no weeks
			return schedule.Collection{}, nil
		}
		return nil, err
	}

	if isLegacyWeek(fields) {
		var week schedule.WeekRecord
		if err := json.Unmarshal(raw, &week); err != nil {
			return nil, fmt.Errorf("legacy week record: %w", err)
		}
		return schedule.Collection{week.WeekKey: week}, nil
	}

	all := make(schedule.Collection, len(fields))
	for key, value := range fields {
		var week schedule.WeekRecord
		if err := json.Unmarshal(value, &week); err != nil {
			logger.Warn("Skipping undecodable week record",
				zap.String("week_key", key),
				zap.Error(err))
			continue
		}
		all[key] = week
	}
	return all, nil
}

// isLegacyWeek reports whether the top-level object is itself a week record:
// a non-empty weekKey string next to a present weekDays value.
func isLegacyWeek(fields map[string]json.RawMessage) bool {
	rawKey, ok := fields["weekKey"]
	if !ok {
		return false
	}
	var weekKey string
	if err := json.Unmarshal(rawKey, &weekKey); err != nil || weekKey == "" {
		return false
	}

	rawDays, ok := fields["weekDays"]
	if !ok {
		return false
	}
	return !bytes.Equal(bytes.TrimSpace(rawDays), []byte("null"))
}
