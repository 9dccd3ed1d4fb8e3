package streak

import (
	"testing"
	"time"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/progress"
)

func day(s string) time.Time {
	t, err := time.Parse(progress.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t.Add(15 * time.Hour)
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name           string
		lastLogin      string
		streak         int
		today          string
		expectedStreak int
		expectedKind   Kind
		expectedReward int
	}{
		{
			name:           "consecutive day extends streak",
			lastLogin:      "2024-01-01",
			streak:         3,
			today:          "2024-01-02",
			expectedStreak: 4,
			expectedKind:   KindContinued,
			expectedReward: 9,
		},
		{
			name:           "gap of several days restarts streak",
			lastLogin:      "2024-01-01",
			streak:         3,
			today:          "2024-01-05",
			expectedStreak: 1,
			expectedKind:   KindStarted,
			expectedReward: 6,
		},
		{
			name:           "same day is not counted twice",
			lastLogin:      "2024-01-01",
			streak:         3,
			today:          "2024-01-01",
			expectedStreak: 3,
			expectedKind:   KindSameDay,
			expectedReward: 0,
		},
		{
			name:           "first login",
			lastLogin:      "",
			streak:         0,
			today:          "2024-01-01",
			expectedStreak: 1,
			expectedKind:   KindStarted,
			expectedReward: 6,
		},
		{
			name:           "last login in the future restarts streak",
			lastLogin:      "2024-02-01",
			streak:         7,
			today:          "2024-01-15",
			expectedStreak: 1,
			expectedKind:   KindStarted,
			expectedReward: 6,
		},
		{
			name:           "unparsable last login restarts streak",
			lastLogin:      "last tuesday",
			streak:         2,
			today:          "2024-01-15",
			expectedStreak: 1,
			expectedKind:   KindStarted,
			expectedReward: 6,
		},
		{
			name:           "month boundary",
			lastLogin:      "2024-02-29",
			streak:         9,
			today:          "2024-03-01",
			expectedStreak: 10,
			expectedKind:   KindContinued,
			expectedReward: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := progress.Default()
			state.LastLoginDate = tt.lastLogin
			state.Streak = tt.streak

			got := Update(state, day(tt.today))

			if state.Streak != tt.expectedStreak {
				t.Errorf("Streak = %d, expected %d", state.Streak, tt.expectedStreak)
			}
			if got.Kind != tt.expectedKind {
				t.Errorf("Kind = %s, expected %s", got.Kind, tt.expectedKind)
			}
			if got.Reward != tt.expectedReward {
				t.Errorf("Reward = %d, expected %d", got.Reward, tt.expectedReward)
			}
			if state.LastLoginDate != tt.today {
				t.Errorf("LastLoginDate = %s, expected %s", state.LastLoginDate, tt.today)
			}
			if got.Previous != tt.streak || got.Current != tt.expectedStreak {
				t.Errorf("Transition = %+v, expected %d -> %d", got, tt.streak, tt.expectedStreak)
			}
		})
	}
}

func TestLoginReward(t *testing.T) {
	tests := []struct {
		streak   int
		expected int
	}{
		{0, 5}, {1, 6}, {4, 9}, {5, 10}, {6, 10}, {100, 10},
	}

	for _, tt := range tests {
		if got := LoginReward(tt.streak); got != tt.expected {
			t.Errorf("LoginReward(%d) = %d, expected %d", tt.streak, got, tt.expected)
		}
	}
}

func TestDay_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	at := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC).In(loc)

	if got := Day(at); got != "2024-01-02" {
		t.Errorf("Day() = %s, expected 2024-01-02", got)
	}
}
