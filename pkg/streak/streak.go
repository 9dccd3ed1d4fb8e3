// Package streak derives the consecutive-day login streak from the last
// login date stored in the progress record.
package streak

import (
	"time"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/progress"
	"github.com/sirupsen/logrus"
)

const (
	// BaseReward is credited on every counted login.
	BaseReward = 5
	// MaxBonus caps the streak bonus added to BaseReward.
	MaxBonus = 5
)

// Kind describes how a login changed the streak.
type Kind string

const (
	KindSameDay   Kind = "same_day"
	KindContinued Kind = "continued"
	KindStarted   Kind = "started"
)

// Transition is the outcome of Update.
type Transition struct {
	Kind     Kind   `json:"kind"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
	Today    string `json:"today"`
	Reward   int    `json:"reward"`
}

// Changed reports whether the login was counted.
func (t Transition) Changed() bool {
	return t.Kind != KindSameDay
}

// Day formats t as a calendar day in its own location.
func Day(t time.Time) string {
	return t.Format(progress.DateLayout)
}

// LoginReward returns the coins granted for a login that brings the streak to streak.
func LoginReward(streak int) int {
	bonus := streak
	if bonus > MaxBonus {
		bonus = MaxBonus
	}
	if bonus < 0 {
		bonus = 0
	}
	return BaseReward + bonus
}

// Update applies a login on today to state.
// A login on the stored day is not counted again. A login on the following
// day extends the streak. Anything else restarts it at 1, including a stored
// day that is after today or cannot be parsed.
func Update(state *progress.State, today time.Time) Transition {
	todayStr := Day(today)
	transition := Transition{
		Previous: state.Streak,
		Today:    todayStr,
	}

	if state.LastLoginDate == todayStr {
		transition.Kind = KindSameDay
		transition.Current = state.Streak
		return transition
	}

	if isPreviousDay(state.LastLoginDate, today) {
		state.Streak++
		transition.Kind = KindContinued
	} else {
		if state.LastLoginDate != "" {
			logrus.Debugf("streak restarted: last login %s, today %s", state.LastLoginDate, todayStr)
		}
		state.Streak = 1
		transition.Kind = KindStarted
	}

	state.LastLoginDate = todayStr
	transition.Current = state.Streak
	transition.Reward = LoginReward(state.Streak)
	return transition
}

func isPreviousDay(last string, today time.Time) bool {
	if last == "" {
		return false
	}
	lastDay, err := time.ParseInLocation(progress.DateLayout, last, today.Location())
	if err != nil {
		logrus.Warnf("unparsable last login date %q, treating as first login", last)
		return false
	}
	y, m, d := today.Date()
	return lastDay.AddDate(0, 0, 1).Equal(time.Date(y, m, d, 0, 0, 0, 0, today.Location()))
}
