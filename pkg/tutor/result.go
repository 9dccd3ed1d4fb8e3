package tutor

import (
	"time"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/progress"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/streak"
)

// Outcome tells whether an accepted operation changed anything.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeNoop    Outcome = "noop"
)

// Result describes the effect of one controller operation.
type Result struct {
	Outcome        Outcome            `json:"outcome"`
	Saved          bool               `json:"saved"`
	CoinsAwarded   int                `json:"coinsAwarded,omitempty"`
	CoinsDebited   int                `json:"coinsDebited,omitempty"`
	NewlyCompleted bool               `json:"newlyCompleted,omitempty"`
	Unlocked       []string           `json:"unlocked,omitempty"`
	Streak         *streak.Transition `json:"streak,omitempty"`
	State          *progress.State    `json:"state"`
}

// Summary is a read-only overview of the learner's progress.
type Summary struct {
	Username          string    `json:"username"`
	Coins             int       `json:"coins"`
	Streak            int       `json:"streak"`
	CompletedLessons  int       `json:"completedLessons"`
	TotalLessons      int       `json:"totalLessons"`
	PercentComplete   float64   `json:"percentComplete"`
	Achievements      int       `json:"achievements"`
	TotalAchievements int       `json:"totalAchievements"`
	CurrentLessonID   string    `json:"currentLessonId,omitempty"`
	NextLessonID      string    `json:"nextLessonId,omitempty"`
	LastActive        time.Time `json:"lastActive"`
}

// Activity is one completed lesson in the recent activity list.
type Activity struct {
	LessonID    string    `json:"lessonId"`
	Title       string    `json:"title"`
	CompletedAt time.Time `json:"completedAt"`
}

// LessonStatus is a lesson as the learner currently sees it.
type LessonStatus struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	RequiredCoins int    `json:"requiredCoins"`
	Reward        int    `json:"reward"`
	Unlocked      bool   `json:"unlocked"`
	Completed     bool   `json:"completed"`
}

// AchievementStatus is an achievement as the learner currently sees it.
type AchievementStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`
	Unlocked    bool   `json:"unlocked"`
}
