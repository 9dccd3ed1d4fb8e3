package notify

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies what happened.
type Type string

const (
	TypeCoinsAwarded        Type = "coins_awarded"
	TypeCoinsSpent          Type = "coins_spent"
	TypeAchievementUnlocked Type = "achievement_unlocked"
	TypeLessonCompleted     Type = "lesson_completed"
	TypeStreakUpdated       Type = "streak_updated"
	TypeStorageFailure      Type = "storage_failure"
)

// Event is a user-visible notification emitted by the controller.
type Event struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	Amount        int       `json:"amount,omitempty"`
	AchievementID string    `json:"achievementId,omitempty"`
	LessonID      string    `json:"lessonId,omitempty"`
	Message       string    `json:"message"`
}

// NewEvent creates an event with a fresh id.
func NewEvent(eventType Type, at time.Time, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: at,
		Message:   message,
	}
}
