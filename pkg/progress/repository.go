package progress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/store"
	"github.com/sirupsen/logrus"
)

// StateKey is the canonical store key of the progress record.
const StateKey = "aiLearningUserState"

// LegacyKeys are older store keys that are migrated to StateKey on load.
var LegacyKeys = []string{"ai_learning_user_state", "userState"}

// legacyFields maps field names found in legacy records to canonical ones.
var legacyFields = map[string]string{
	"user_name":         fieldUsername,
	"completed_lessons": fieldCompletedLessons,
	"current_lesson_id": fieldCurrentLessonID,
	"last_login_date":   fieldLastLoginDate,
	"completion_dates":  fieldCompletionDates,
	"last_active":       fieldLastActive,
}

// Repository loads and saves the progress record through a store adapter.
type Repository struct {
	adapter *store.Adapter
}

// NewRepository creates a new repository over adapter.
func NewRepository(adapter *store.Adapter) *Repository {
	return &Repository{adapter: adapter}
}

// Load returns the stored record, migrating a legacy one if needed.
// An absent or corrupt record yields defaults. The second result is false
// when a key could not be read at all: the stored record may still exist,
// so the caller must not save the returned state over it.
func (r *Repository) Load(ctx context.Context) (*State, bool) {
	data, status := r.adapter.Load(ctx, StateKey)
	switch status {
	case store.StatusFound:
		state, err := Decode([]byte(data))
		if err != nil {
			logrus.Warnf("stored progress is corrupt, starting from defaults: %v", err)
		}
		return state, true
	case store.StatusFailed:
		logrus.Warnf("stored progress could not be read, keeping it untouched")
		return Default(), false
	}

	for _, key := range LegacyKeys {
		data, status := r.adapter.Load(ctx, key)
		switch status {
		case store.StatusMissing:
			continue
		case store.StatusFailed:
			logrus.Warnf("legacy progress under %s could not be read, skipping migration", key)
			return Default(), false
		}

		state, err := Decode(renameLegacyFields([]byte(data)))
		if err != nil {
			logrus.Warnf("legacy progress under %s is corrupt, starting from defaults: %v", key, err)
			return state, true
		}
		if r.adapter.SaveJSON(ctx, StateKey, state) {
			r.adapter.Remove(ctx, key)
			logrus.Infof("migrated progress from legacy key %s to %s", key, StateKey)
		}
		return state, true
	}

	logrus.Infof("no existing progress found, returning new state")
	return Default(), true
}

// Save stamps LastActive and writes the record.
// Returns false if the write failed; state is kept in memory either way.
func (r *Repository) Save(ctx context.Context, state *State, now time.Time) bool {
	state.LastActive = now.UTC()
	return r.adapter.SaveJSON(ctx, StateKey, state)
}

// Remove deletes the stored record.
func (r *Repository) Remove(ctx context.Context) bool {
	return r.adapter.Remove(ctx, StateKey)
}

func renameLegacyFields(data []byte) []byte {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return data
	}

	for legacy, canonical := range legacyFields {
		value, ok := raw[legacy]
		if !ok {
			continue
		}
		delete(raw, legacy)
		if _, exists := raw[canonical]; !exists {
			raw[canonical] = value
		}
	}

	renamed, err := json.Marshal(raw)
	if err != nil {
		return data
	}
	return renamed
}
