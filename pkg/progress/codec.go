package progress

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// JSON field names of the canonical schema.
const (
	fieldUsername         = "username"
	fieldCoins            = "coins"
	fieldCompletedLessons = "completedLessons"
	fieldCurrentLessonID  = "currentLessonId"
	fieldAchievements     = "achievements"
	fieldStreak           = "streak"
	fieldLastLoginDate    = "lastLoginDate"
	fieldPreferences      = "preferences"
	fieldCompletionDates  = "completionDates"
	fieldLastActive       = "lastActive"
)

// Encode serializes the state. Keys are sorted, so equal states encode to
// identical bytes.
func Encode(s *State) ([]byte, error) {
	out := make(map[string]interface{}, len(s.Extra)+10)
	for key, raw := range s.Extra {
		out[key] = raw
	}

	out[fieldUsername] = s.Username
	out[fieldCoins] = s.Coins
	out[fieldCompletedLessons] = nonNil(s.CompletedLessons)
	out[fieldCurrentLessonID] = nullable(s.CurrentLessonID)
	out[fieldAchievements] = nonNil(s.Achievements)
	out[fieldStreak] = s.Streak
	out[fieldLastLoginDate] = nullable(s.LastLoginDate)
	out[fieldPreferences] = s.Preferences

	dates := make(map[string]string, len(s.CompletionDates))
	for lessonID, at := range s.CompletionDates {
		dates[lessonID] = at.UTC().Format(time.RFC3339Nano)
	}
	out[fieldCompletionDates] = dates

	if !s.LastActive.IsZero() {
		out[fieldLastActive] = s.LastActive.UTC().Format(time.RFC3339Nano)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

// Decode parses a stored record, merging it over Default field by field.
// Fields that are missing, null or of the wrong type keep their default;
// fields this version does not know are kept in Extra. If data is not a JSON
// object at all, the defaults are returned together with the parse error.
func Decode(data []byte) (*State, error) {
	state := Default()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return state, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	for key, value := range raw {
		if isNull(value) {
			continue
		}
		switch key {
		case fieldUsername:
			decodeField(key, value, &state.Username)
		case fieldCoins:
			decodeField(key, value, &state.Coins)
		case fieldCompletedLessons:
			decodeField(key, value, &state.CompletedLessons)
		case fieldCurrentLessonID:
			decodeField(key, value, &state.CurrentLessonID)
		case fieldAchievements:
			decodeField(key, value, &state.Achievements)
		case fieldStreak:
			decodeField(key, value, &state.Streak)
		case fieldLastLoginDate:
			decodeField(key, value, &state.LastLoginDate)
		case fieldPreferences:
			decodeField(key, value, &state.Preferences)
		case fieldCompletionDates:
			state.CompletionDates = decodeCompletionDates(value)
		case fieldLastActive:
			if at, ok := parseTimestamp(value); ok {
				state.LastActive = at
			}
		default:
			state.Extra[key] = value
		}
	}

	normalize(state)
	return state, nil
}

// decodeField overwrites dst only when raw decodes cleanly as T.
// Decoding starts from the current value so partial objects keep defaults.
func decodeField[T any](name string, raw json.RawMessage, dst *T) {
	v := *dst
	if err := json.Unmarshal(raw, &v); err != nil {
		logrus.Warnf("ignoring malformed stored field %s: %v", name, err)
		return
	}
	*dst = v
}

func decodeCompletionDates(raw json.RawMessage) map[string]time.Time {
	dates := make(map[string]time.Time)

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		logrus.Warnf("ignoring malformed stored field %s: %v", fieldCompletionDates, err)
		return dates
	}
	for lessonID, value := range entries {
		if at, ok := parseTimestamp(value); ok {
			dates[lessonID] = at
		}
	}
	return dates
}

// parseTimestamp accepts an RFC 3339 string or epoch milliseconds.
func parseTimestamp(raw json.RawMessage) (time.Time, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		at, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return time.Time{}, false
		}
		return at.UTC(), true
	}

	millis, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis).UTC(), true
}

// normalize restores the record invariants after a merge.
func normalize(s *State) {
	if s.Coins < 0 {
		s.Coins = 0
	}
	if s.Streak < 0 {
		s.Streak = 0
	}
	s.CompletedLessons = dedupe(s.CompletedLessons)
	s.Achievements = dedupe(s.Achievements)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
