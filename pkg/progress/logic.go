package progress

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// CreditCoins adds amount to the balance.
// Returns false without touching the state if amount is not positive.
func CreditCoins(state *State, amount int) bool {
	if amount <= 0 {
		return false
	}
	state.Coins += amount
	logrus.Debugf("credited %d coins, balance %d", amount, state.Coins)
	return true
}

// DebitCoins subtracts amount from the balance, clamping at zero.
// Returns the number of coins actually removed and false if amount is not positive.
func DebitCoins(state *State, amount int) (int, bool) {
	if amount <= 0 {
		return 0, false
	}
	debited := amount
	if debited > state.Coins {
		debited = state.Coins
	}
	state.Coins -= debited
	logrus.Debugf("debited %d of %d requested coins, balance %d", debited, amount, state.Coins)
	return debited, true
}

// HasCompleted reports whether lessonID is in the completed set.
func HasCompleted(state *State, lessonID string) bool {
	for _, id := range state.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// CompleteLesson records lessonID as completed at now.
// Returns true only the first time; later calls leave the state unchanged.
func CompleteLesson(state *State, lessonID string, now time.Time) bool {
	if lessonID == "" || HasCompleted(state, lessonID) {
		return false
	}
	state.CompletedLessons = append(state.CompletedLessons, lessonID)
	if state.CompletionDates == nil {
		state.CompletionDates = make(map[string]time.Time)
	}
	state.CompletionDates[lessonID] = now.UTC()
	return true
}

// HasAchievement reports whether achievementID is unlocked.
func HasAchievement(state *State, achievementID string) bool {
	for _, id := range state.Achievements {
		if id == achievementID {
			return true
		}
	}
	return false
}

// UnlockAchievement appends achievementID if it is not unlocked yet.
func UnlockAchievement(state *State, achievementID string) bool {
	if achievementID == "" || HasAchievement(state, achievementID) {
		return false
	}
	state.Achievements = append(state.Achievements, achievementID)
	return true
}

// ResetState returns a fresh default record, optionally carrying over the
// username of the current one. Unknown stored fields survive the reset.
func ResetState(state *State, keepUsername bool) *State {
	fresh := Default()
	if keepUsername && state.Username != "" {
		fresh.Username = state.Username
	}
	for key, raw := range state.Extra {
		fresh.Extra[key] = raw
	}
	return fresh
}

// LessonsCompletedOn counts completions that fall on the calendar day of day,
// evaluated in day's location.
func LessonsCompletedOn(state *State, day time.Time) int {
	if len(state.CompletionDates) == 0 {
		return 0
	}
	y, m, d := day.Date()
	count := 0
	for _, at := range state.CompletionDates {
		ay, am, ad := at.In(day.Location()).Date()
		if ay == y && am == m && ad == d {
			count++
		}
	}
	return count
}

// RecentLessons returns up to n completed lesson ids, most recent first.
func RecentLessons(state *State, n int) []string {
	if n <= 0 || n > len(state.CompletedLessons) {
		n = len(state.CompletedLessons)
	}
	recent := make([]string, 0, n)
	for i := len(state.CompletedLessons) - 1; i >= 0 && len(recent) < n; i-- {
		recent = append(recent, state.CompletedLessons[i])
	}
	return recent
}

// Clone returns a deep copy of state.
func Clone(state *State) *State {
	out := *state
	out.CompletedLessons = append([]string{}, state.CompletedLessons...)
	out.Achievements = append([]string{}, state.Achievements...)

	out.CompletionDates = make(map[string]time.Time, len(state.CompletionDates))
	for id, at := range state.CompletionDates {
		out.CompletionDates[id] = at
	}

	out.Extra = make(map[string]json.RawMessage, len(state.Extra))
	for key, raw := range state.Extra {
		out.Extra[key] = append(json.RawMessage{}, raw...)
	}
	return &out
}
